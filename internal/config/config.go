package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/pders01/headlines/internal/news"
)

const appName = "headlines"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Key         string        `mapstructure:"key"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// DefaultsConfig is the filter state the app starts with.
type DefaultsConfig struct {
	Query    string `mapstructure:"query"`
	Country  string `mapstructure:"country"`
	Category string `mapstructure:"category"`
	Sort     string `mapstructure:"sort"`
	Theme    string `mapstructure:"theme"`
}

type UIConfig struct {
	Colors  ThemeColors   `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type ThemeColors struct {
	Light UIColors `mapstructure:"light"`
	Dark  UIColors `mapstructure:"dark"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Surface   string `mapstructure:"surface"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

// KeyBindings are combined with the modifier, except Quit and Back which
// are used as-is.
type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Search    string `mapstructure:"search"`
	Find      string `mapstructure:"find"`
	Category  string `mapstructure:"category"`
	Country   string `mapstructure:"country"`
	Sort      string `mapstructure:"sort"`
	Theme     string `mapstructure:"theme"`
	Bookmark  string `mapstructure:"bookmark"`
	Bookmarks string `mapstructure:"bookmarks"`
	NextPage  string `mapstructure:"next_page"`
	PrevPage  string `mapstructure:"prev_page"`
	OpenLink  string `mapstructure:"open_link"`
	OpenImage string `mapstructure:"open_image"`
	FullText  string `mapstructure:"full_text"`
	Back      string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "https://newsapi.org",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "headlines/1.0 (https://github.com/pders01/headlines)",
		},
		Defaults: DefaultsConfig{
			Country:  "us",
			Category: "",
			Sort:     string(news.SortPublishedAt),
			Theme:    string(news.ThemeLight),
		},
		UI: UIConfig{
			Colors: ThemeColors{
				Light: UIColors{
					Primary:   "#D94848",
					Secondary: "#1E8C84",
					Accent:    "#2F7D6D",
					Surface:   "#EEF2F7",
					Text:      "#1F2933",
					Muted:     "#64748B",
					Error:     "#C53030",
					Success:   "#15803D",
				},
				Dark: UIColors{
					Primary:   "#FF6B6B",
					Secondary: "#4ECDC4",
					Accent:    "#95E1D3",
					Surface:   "#16213E",
					Text:      "#EAEAEA",
					Muted:     "#94A3B8",
					Error:     "#F87171",
					Success:   "#4ADE80",
				},
			},
			Article: ArticleConfig{
				MaxDescriptionLength: 150,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Image: []string{"qlmanage", "open"},
			},
			Linux: MediaPlayers{
				Image: []string{"feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Image: []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Search:    "s",
				Find:      "f",
				Category:  "g",
				Country:   "r",
				Sort:      "o",
				Theme:     "t",
				Bookmark:  "b",
				Bookmarks: "l",
				NextPage:  "n",
				PrevPage:  "p",
				OpenLink:  "w",
				OpenImage: "v",
				FullText:  "e",
				Back:      "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(xdg.StateHome, appName, appName+".log"),
		},
		Search: SearchConfig{
			Limit: 20,
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultConfigPath is where Load looks first and where `config generate` writes.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// settings flattens cfg into dotted viper keys, one per scalar field, so a
// config file that sets a single nested value keeps the defaults of its
// siblings. Durations are rendered as strings so the TOML stays readable.
func settings(cfg *Config) map[string]any {
	out := make(map[string]any)
	leaves(out, "", reflect.ValueOf(*cfg))
	return out
}

func leaves(out map[string]any, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		key := rt.Field(i).Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		field := rv.Field(i)
		switch value := field.Interface().(type) {
		case time.Duration:
			out[key] = value.String()
		default:
			if field.Kind() == reflect.Struct {
				leaves(out, key, field)
				continue
			}
			out[key] = value
		}
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HEADLINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.Log.Path = expandPath(config.Log.Path)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the app cannot start with.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", cfg.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must have a host, got %q", cfg.API.BaseURL)
	}

	if cfg.API.HTTPTimeout <= 0 {
		return fmt.Errorf("api.http_timeout must be positive, got %s", cfg.API.HTTPTimeout)
	}

	if _, err := news.ParseTheme(cfg.Defaults.Theme); err != nil {
		return fmt.Errorf("defaults.theme: %w", err)
	}

	f := cfg.Filter()
	if err := f.Validate(news.DefaultCatalog()); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}

	if cfg.Keys.Modifier == "" {
		return fmt.Errorf("keys.modifier cannot be empty")
	}

	return nil
}

// Filter returns the configured starting filter.
func (c *Config) Filter() news.FilterState {
	return news.FilterState{
		Query:    c.Defaults.Query,
		Country:  news.Country(c.Defaults.Country),
		Category: news.Category(c.Defaults.Category),
		Sort:     news.SortOption(c.Defaults.Sort),
		Page:     1,
	}
}

// Theme returns the configured starting theme, light when unparseable.
func (c *Config) Theme() news.Theme {
	t, err := news.ParseTheme(c.Defaults.Theme)
	if err != nil {
		return news.ThemeLight
	}
	return t
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range settings(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
