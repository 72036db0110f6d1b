package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// ID styles accepted in board.id_style.
const (
	IDStyleUUID  = "uuid"
	IDStyleShort = "short"
)

// Config holds every runtime setting read from config.toml.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Board   BoardConfig   `toml:"board"`
	Keys    KeyConfig     `toml:"keys"`
	Serve   ServeConfig   `toml:"serve"`
}

// LoggingConfig holds runtime log settings.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the dev-mode log file sink. A blank Dir uses the platform log dir; a
// relative Dir resolves against the config file's directory.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// BoardConfig holds defaults for new boards.
type BoardConfig struct {
	ColumnTitleFormat string   `toml:"column_title_format"`
	TaskContentFormat string   `toml:"task_content_format"`
	SeedColumns       []string `toml:"seed_columns"`
	IDStyle           string   `toml:"id_style"`
	ChangeLogLimit    int      `toml:"change_log_limit"`
}

// KeyConfig overrides selected TUI key bindings.
type KeyConfig struct {
	AddColumn   string `toml:"add_column"`
	AddTask     string `toml:"add_task"`
	GrabTask    string `toml:"grab_task"`
	GrabColumn  string `toml:"grab_column"`
	ActivityLog string `toml:"activity_log"`
}

// ServeConfig holds serve-mode endpoints.
type ServeConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Board: BoardConfig{
			ColumnTitleFormat: "Column %d",
			TaskContentFormat: "Task %d",
			IDStyle:           IDStyleUUID,
			ChangeLogLimit:    200,
		},
		Keys: KeyConfig{
			AddColumn:   "C",
			AddTask:     "n",
			GrabTask:    "space",
			GrabColumn:  "g",
			ActivityLog: "a",
		},
		Serve: ServeConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

// Load reads path over defaults. A blank path, missing file, or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every configured value.
func (c Config) Validate() error {
	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if err := validateTitleFormat("board.column_title_format", c.Board.ColumnTitleFormat); err != nil {
		return err
	}
	if err := validateTitleFormat("board.task_content_format", c.Board.TaskContentFormat); err != nil {
		return err
	}
	switch strings.TrimSpace(strings.ToLower(c.Board.IDStyle)) {
	case "", IDStyleUUID, IDStyleShort:
	default:
		return fmt.Errorf("invalid board.id_style: %q", c.Board.IDStyle)
	}
	if c.Board.ChangeLogLimit < 0 {
		return errors.New("board.change_log_limit must be >= 0")
	}
	seen := map[string]struct{}{}
	for idx, title := range c.Board.SeedColumns {
		title = strings.TrimSpace(title)
		if title == "" {
			return fmt.Errorf("board.seed_columns[%d] is empty", idx)
		}
		if _, ok := seen[title]; ok {
			return fmt.Errorf("board.seed_columns[%d] is duplicated: %s", idx, title)
		}
		seen[title] = struct{}{}
	}

	bindings := map[string]string{
		"keys.add_column":   c.Keys.AddColumn,
		"keys.add_task":     c.Keys.AddTask,
		"keys.grab_task":    c.Keys.GrabTask,
		"keys.grab_column":  c.Keys.GrabColumn,
		"keys.activity_log": c.Keys.ActivityLog,
	}
	owners := map[string]string{}
	for _, field := range []string{"keys.add_column", "keys.add_task", "keys.grab_task", "keys.grab_column", "keys.activity_log"} {
		key := strings.TrimSpace(bindings[field])
		if key == "" {
			continue
		}
		if other, ok := owners[key]; ok {
			return fmt.Errorf("%s duplicates %s: %q", field, other, key)
		}
		owners[key] = field
	}

	if c.Serve.HTTPBind != "" && !strings.Contains(c.Serve.HTTPBind, ":") {
		return fmt.Errorf("invalid serve.http_bind: %q", c.Serve.HTTPBind)
	}
	api := strings.Trim(strings.TrimSpace(c.Serve.APIEndpoint), "/")
	mcp := strings.Trim(strings.TrimSpace(c.Serve.MCPEndpoint), "/")
	if api != "" && api == mcp {
		return errors.New("serve.api_endpoint and serve.mcp_endpoint must differ")
	}

	return nil
}

// validateTitleFormat accepts blank formats and formats with exactly one %d verb.
func validateTitleFormat(field, format string) error {
	if format == "" {
		return nil
	}
	if strings.Count(format, "%d") != 1 || strings.Count(format, "%") != 1 {
		return fmt.Errorf("%s must contain exactly one %%d: %q", field, format)
	}
	return nil
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
