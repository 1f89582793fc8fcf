package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/statify/internal/auth"
	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    *models.Session
	api        *services.APIService
	spotify    *services.SpotifyService
	engine     *tasks.StatsEngine
	navigator  auth.Navigator
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Navigator  auth.Navigator
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Navigator == nil {
		opts.Navigator = auth.NavigatorFunc(func(_ context.Context, authURL string) error {
			return shared.OpenBrowser(authURL)
		})
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    models.NewSession(),
		navigator:  opts.Navigator,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.wire()
	return r
}

// wire rebuilds the service graph from the current config. The session survives so a login is never lost.
func (r *Runner) wire() {
	r.api = services.NewAPIService(services.APIOptions{
		BaseURL:           r.config.API.BaseURL,
		HTTPClient:        r.httpClient,
		Session:           r.session,
		RequestsPerSecond: r.config.API.RequestsPerSecond,
		OnSessionExpired: func() {
			r.logger.Warn("spotify rejected the access token, log in again")
		},
		Logger: r.logger,
	})
	r.spotify = services.NewSpotifyService(r.api)
	r.engine = tasks.NewStatsEngine(r.spotify, r.logger)
}

// SetLogger swaps the logger of the runner and every service it owns.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.wire()
}

// before loads the config named by --config (when present), applies flag overrides and rewires the services.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if id := cmd.String("client-id"); id != "" {
		r.config.Credentials.Spotify.ClientID = id
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	r.wire()
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, topCommand, dashboardCommand, recommendCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// progress starts a consumer that logs engine updates; stop closes the channel and waits for the consumer to drain.
func (r *Runner) progress() (ch chan tasks.ProgressUpdate, stop func()) {
	ch = make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range ch {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
