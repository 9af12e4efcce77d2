package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mmcdole/lumen/internal/domain"
)

// Opener opens portal pages in a web browser
type Opener struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	goos    string
	logger  *slog.Logger

	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// NewOpener creates an Opener. An empty command uses the system default.
func NewOpener(command string, args []string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// ItemURL returns the web page of item id in d under base.
func ItemURL(base string, d domain.Domain, id int64) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid web URL %q", base)
	}
	return u.JoinPath(string(d), strconv.FormatInt(id, 10)).String(), nil
}

// Open launches the browser on pageURL
func (o *Opener) Open(pageURL string) error {
	name, args := o.commandFor(pageURL)
	o.logger.Info("opening page", "command", name, "args", args)
	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", pageURL, err)
	}
	return nil
}

// commandFor resolves the program and arguments that open pageURL.
func (o *Opener) commandFor(pageURL string) (string, []string) {
	if o.command != "" {
		args := append(append([]string{}, o.args...), pageURL)

		// On macOS, GUI browsers usually are not on PATH; go through 'open -a'
		if o.goos == "darwin" {
			if _, err := o.lookPath(o.command); err != nil {
				app := strings.TrimSuffix(filepath.Base(o.command), filepath.Ext(o.command))
				openArgs := []string{"-a", app}
				if len(o.args) > 0 {
					openArgs = append(openArgs, "--args")
					openArgs = append(openArgs, o.args...)
				}
				return "open", append(openArgs, pageURL)
			}
		}
		return o.command, args
	}

	switch o.goos {
	case "darwin":
		return "open", []string{pageURL}
	case "windows":
		return "cmd", []string{"/c", "start", "", pageURL}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{pageURL}
	}
}
