package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/kanboard/internal/adapters/render"
	"github.com/evanschultz/kanboard/internal/adapters/server"
	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/gesture"
	"github.com/evanschultz/kanboard/internal/platform"
	"github.com/evanschultz/kanboard/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program is the subset of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree with plain cobra error handling.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// rootOptions holds global flag values.
type rootOptions struct {
	configPath string
	appName    string
	devMode    bool
}

// runtimeEnv is the resolved state shared by every command.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	defaults   config.Config
	cfg        config.Config
	logger     *runtimeLogger
}

// newRootCommand builds the kanboard command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: "kanboard"}
	if envApp := strings.TrimSpace(os.Getenv("KANBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("KANBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}

	root := &cobra.Command{
		Use:     "kanboard",
		Short:   "Drag-and-drop kanboard in the terminal",
		Long:    "kanboard keeps an in-memory board of columns and tasks and lets you rearrange it with keyboard or mouse drags.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newServeCommand(opts, stderr),
		newReplayCommand(opts, stdout, stderr),
		newPathsCommand(opts, stdout),
	)
	return root
}

// newServeCommand builds `kanboard serve`.
func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one board over HTTP and MCP",
		Long:  "Serve one in-memory board session: REST under the API endpoint and MCP tools under the MCP endpoint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap(opts, stderr)
			if err != nil {
				return err
			}
			defer env.close(stderr)

			serveCfg := env.cfg.Serve
			if cmd.Flags().Changed("http") {
				serveCfg.HTTPBind = httpBind
			}
			if cmd.Flags().Changed("api") {
				serveCfg.APIEndpoint = apiEndpoint
			}
			if cmd.Flags().Changed("mcp") {
				serveCfg.MCPEndpoint = mcpEndpoint
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := newSession(env.cfg, env.logger, true)
			env.logger.Info("command flow start", "command", "serve", "http", serveCfg.HTTPBind)
			err = server.Run(ctx, server.Config{
				HTTPBind:      serveCfg.HTTPBind,
				APIEndpoint:   serveCfg.APIEndpoint,
				MCPEndpoint:   serveCfg.MCPEndpoint,
				ServerName:    opts.appName,
				ServerVersion: version,
			}, server.Dependencies{
				Board:  common.NewSessionAdapter(session),
				Logger: env.logger,
			})
			if err != nil {
				env.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from [serve] http_bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api", "", "REST API base path (default from [serve] api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp", "", "MCP endpoint path (default from [serve] mcp_endpoint)")
	return cmd
}

// newReplayCommand builds `kanboard replay <script.toml>`.
func newReplayCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		format string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "replay <script.toml>",
		Short: "Replay a gesture script and print the final board",
		Long:  "Replay a TOML gesture script against a fresh board and print the resulting board in the chosen format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			env, err := bootstrap(opts, stderr)
			if err != nil {
				return err
			}
			defer env.close(stderr)

			script, err := gesture.Load(args[0])
			if err != nil {
				return fmt.Errorf("load gesture script: %w", err)
			}
			env.logger.Info("command flow start", "command", "replay", "script", args[0], "steps", len(script.Steps))

			session := newSession(env.cfg, env.logger, false)
			result, err := gesture.NewReplayer(session, env.logger).Replay(cmd.Context(), script)
			if err != nil {
				env.logger.Error("command flow failed", "command", "replay", "err", err)
				return fmt.Errorf("replay %s: %w", args[0], err)
			}
			if err := render.Write(stdout, result.Snapshot, outFormat, width); err != nil {
				return fmt.Errorf("write board: %w", err)
			}
			env.logger.Info("command flow complete", "command", "replay", "steps", result.Steps, "applied", result.Applied)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(render.FormatTable), "output format: table, markdown, pretty, json")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width for pretty output")
	return cmd
}

// newPathsCommand builds `kanboard paths`.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			cfg, err := config.Load(paths.ConfigPath, config.Default())
			if err != nil {
				return fmt.Errorf("load config %q: %w", paths.ConfigPath, err)
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDirFor(cfg.Logging.DevFile.Dir))
			return nil
		},
	}
}

// bootstrap resolves paths, loads config, and opens the runtime logger.
func bootstrap(opts *rootOptions, stderr io.Writer) (*runtimeEnv, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	configPath := paths.ConfigPath

	defaults := config.Default()
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(loggerOptions{
		Level:    cfg.Logging.Level,
		Prefix:   opts.appName,
		Console:  stderr,
		FilePath: devLogFile(opts.devMode, cfg.Logging.DevFile, paths, time.Now()),
	})
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir)
	logger.Info("configuration loaded", "config_path", configPath, "log_level", cfg.Logging.Level, "id_style", cfg.Board.IDStyle)
	if logPath := logger.FilePath(); logPath != "" {
		logger.Info("dev file logging enabled", "path", logPath)
	}

	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		defaults:   defaults,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// close releases the logger, reporting failures only when the console sink is live.
func (e *runtimeEnv) close(stderr io.Writer) {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.consoleLive() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// resolvePaths resolves platform paths, taking the config file from --config, then
// KANBOARD_CONFIG, then the platform default.
func resolvePaths(opts *rootOptions) (platform.Paths, error) {
	paths, err := platform.Resolve(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
	if err != nil {
		return platform.Paths{}, err
	}
	if path := strings.TrimSpace(opts.configPath); path != "" {
		return paths.WithConfigPath(path), nil
	}
	return paths.WithConfigPath(os.Getenv("KANBOARD_CONFIG")), nil
}

// devLogFile returns today's dev log file, or "" when the file sink is off.
func devLogFile(devMode bool, cfg config.DevFileConfig, paths platform.Paths, now time.Time) string {
	if !devMode || !cfg.Enabled {
		return ""
	}
	return paths.LogFile(cfg.Dir, now.UTC())
}

// newSession constructs a board session from config. Seeds are skipped for replays so scripts
// start from an empty board.
func newSession(cfg config.Config, logger *runtimeLogger, seed bool) *app.Session {
	sessionCfg := app.SessionConfig{
		Board: app.BoardConfig{
			ColumnTitleFormat: cfg.Board.ColumnTitleFormat,
			TaskContentFormat: cfg.Board.TaskContentFormat,
			ChangeLogLimit:    cfg.Board.ChangeLogLimit,
			Logger:            logger,
		},
	}
	if seed {
		sessionCfg.SeedColumns = cfg.Board.SeedColumns
	}
	return app.NewSession(app.IDGeneratorForStyle(cfg.Board.IDStyle), sessionCfg)
}

// runTUI runs the interactive board until the user quits.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	env, err := bootstrap(opts, stderr)
	if err != nil {
		return err
	}
	// Runtime logs stay in the dev-file sink while the board owns the terminal.
	env.logger.MuteConsole(true)
	defer env.close(stderr)

	session := newSession(env.cfg, env.logger, true)
	logger := env.logger
	m := tui.NewModel(
		session,
		tui.WithRuntimeConfig(toTUIRuntimeConfig(env.cfg)),
		tui.WithReloadConfigCallback(func() (tui.RuntimeConfig, error) {
			logger.Info("runtime config reload requested", "config_path", env.configPath)
			reloaded, err := loadRuntimeConfig(env.configPath, env.defaults)
			if err != nil {
				logger.Error("runtime config reload failed", "config_path", env.configPath, "err", err)
				return tui.RuntimeConfig{}, err
			}
			logger.Info("runtime config reload complete", "config_path", env.configPath)
			return reloaded, nil
		}),
	)
	p := programFactory(m)

	watchCtx, stopWatch := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.Watch(watchCtx, env.configPath, func() {
			logger.Debug("config file changed", "config_path", env.configPath)
			p.Send(tui.ReloadConfigMsg{})
		}, func(err error) {
			logger.Warn("config watch error", "err", err)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch unavailable", "config_path", env.configPath, "err", err)
		}
	}()
	defer func() {
		stopWatch()
		wg.Wait()
	}()

	logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui", "columns", session.Snapshot().ColumnCount(), "tasks", session.Snapshot().TaskCount())
	return nil
}

// loadRuntimeConfig loads runtime-configurable options from disk.
func loadRuntimeConfig(configPath string, defaults config.Config) (tui.RuntimeConfig, error) {
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return tui.RuntimeConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return toTUIRuntimeConfig(cfg), nil
}

// toTUIRuntimeConfig maps config values into TUI runtime settings.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		Keys: tui.KeyConfig{
			AddColumn:   cfg.Keys.AddColumn,
			AddTask:     cfg.Keys.AddTask,
			GrabTask:    cfg.Keys.GrabTask,
			GrabColumn:  cfg.Keys.GrabColumn,
			ActivityLog: cfg.Keys.ActivityLog,
		},
	}
}

// parseBoolEnv parses a boolean environment variable; ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
