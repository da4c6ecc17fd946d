package media

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/headlines/internal/config"
	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/validation"
)

// Runner starts an external program without waiting for it.
type Runner func(name string, args ...string) error

type Launcher struct {
	imageViewer   string
	defaultOpener string
	detector      *TypeDetector
	validator     *validation.LinkValidator
	run           Runner
}

func NewLauncher(cfg *config.Config) *Launcher {
	return newLauncher(cfg, findCommand, startDetached)
}

func newLauncher(cfg *config.Config, lookup func(...string) string, run Runner) *Launcher {
	detector, err := NewTypeDetector()
	if err != nil {
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		detector:      detector,
		validator:     validation.NewLinkValidator(),
		run:           run,
	}

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "darwin":
		players = cfg.Media.Darwin
	case "linux":
		players = cfg.Media.Linux
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Darwin
	}

	if len(players.Image) > 0 {
		l.imageViewer = lookup(players.Image...)
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

// OpenLink opens an article page with the default opener.
func (l *Launcher) OpenLink(rawURL string) error {
	u, err := l.validator.ValidString(rawURL)
	if err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	return l.launch(l.defaultOpener, u)
}

// OpenImage opens an article image. URLs that do not look like images go
// to the default opener, which can sniff the content type itself.
func (l *Launcher) OpenImage(rawURL string) error {
	u, err := l.validator.ValidString(rawURL)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	program := l.defaultOpener
	if l.detector.DetectType(u) == TypeImage {
		program = l.imageViewer
	}
	return l.launch(program, u)
}

func (l *Launcher) launch(program, target string) error {
	if program == "" {
		return fmt.Errorf("no application found to open %s", target)
	}

	name, args := program, []string{target}
	if program == "start" {
		// start is a cmd.exe builtin; the empty argument is the window title.
		name, args = "cmd", []string{"/c", "start", "", target}
	}

	if err := l.run(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	debuglog.Debugf("launched %s", program)
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
