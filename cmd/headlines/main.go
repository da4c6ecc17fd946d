package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/media"
	"github.com/pders01/headlines/internal/newsapi"
	"github.com/pders01/headlines/internal/reader"
	"github.com/pders01/headlines/internal/search"
	"github.com/pders01/headlines/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	flagConfig   string
	flagAPIKey   string
	flagCountry  string
	flagCategory string
	flagSort     string
	flagQuery    string
	flagTheme    string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:           "headlines",
	Short:         "Terminal news reader",
	Long:          "headlines browses top headlines and searches news articles from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("headlines %s\n", Version)
		fmt.Println("Terminal news reader")
		fmt.Println("github.com/pders01/headlines")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the default configuration path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.DefaultConfigPath())
	},
}

func addRootFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagConfig, "config", "", "path to config file")
	f.StringVar(&flagAPIKey, "api-key", "", "news API key (overrides config)")
	f.StringVar(&flagCountry, "country", "", "starting country code")
	f.StringVar(&flagCategory, "category", "", "starting category")
	f.StringVar(&flagSort, "sort", "", "starting sort order (publishedAt, popularity, relevancy)")
	f.StringVar(&flagQuery, "query", "", "start with a search query")
	f.StringVar(&flagTheme, "theme", "", "starting theme (light, dark)")
	f.StringVar(&flagLogLevel, "log-level", "", "debug log level (debug, info, warn, error, off)")
	f.BoolVar(&flagQuiet, "quiet", false, "skip startup banner")
}

func init() {
	addRootFlags(rootCmd)

	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("api-key") {
		cfg.API.Key = flagAPIKey
	}
	if changed("country") {
		cfg.Defaults.Country = flagCountry
	}
	if changed("category") {
		cfg.Defaults.Category = flagCategory
	}
	if changed("sort") {
		cfg.Defaults.Sort = flagSort
	}
	if changed("query") {
		cfg.Defaults.Query = flagQuery
	}
	if changed("theme") {
		cfg.Defaults.Theme = flagTheme
	}
	if changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	return config.Validate(cfg)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer debuglog.Close()

	if cfg.API.Key == "" {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured; set api.key, HEADLINES_API_KEY or --api-key")
	}

	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}
	defer index.Close()

	f := cfg.Filter()
	debuglog.WithFields(map[string]any{
		"version": Version,
		"country": f.Country,
		"search":  f.IsSearch(),
		"theme":   cfg.Theme(),
	}).Infof("starting")

	app := tui.NewApp(cfg, tui.Deps{
		Fetcher:   newsapi.NewClient(cfg.API),
		Extractor: reader.NewHTTPExtractor(cfg.API.HTTPTimeout, cfg.API.UserAgent, nil),
		Opener:    media.NewLauncher(cfg),
		Finder:    index,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
