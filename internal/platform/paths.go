// Package platform resolves where kanboard keeps its config and logs on each OS.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// defaultAppName names the per-user directories when no app name is given.
const defaultAppName = "kanboard"

// ErrNoBaseDir reports that a per-user base directory could not be determined.
var ErrNoBaseDir = errors.New("no base directory")

// Options selects the app name and whether dev-mode directories are used.
type Options struct {
	AppName string
	DevMode bool
}

// BaseDirs are the per-user roots app directories are created under.
type BaseDirs struct {
	Config string
	Data   string
}

// Paths are the locations one app instance reads and writes.
type Paths struct {
	App        string
	ConfigPath string
	DataDir    string
	LogDir     string
}

// Resolve returns paths for opts on the running platform.
func Resolve(opts Options) (Paths, error) {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	home, _ := os.UserHomeDir()
	base, err := BaseDirsFor(runtime.GOOS, os.Getenv, userConfig, home)
	if err != nil {
		return Paths{}, err
	}
	return ResolveIn(base, opts)
}

// BaseDirsFor picks config and data roots for goos. Linux follows XDG with a ~/.local/share data
// fallback, Windows keeps data under LOCALAPPDATA, and everything else stores both under the
// user config dir.
func BaseDirsFor(goos string, getenv func(string) string, userConfig, home string) (BaseDirs, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	lookup := func(name string) string { return strings.TrimSpace(getenv(name)) }

	base := BaseDirs{Config: strings.TrimSpace(userConfig)}
	switch goos {
	case "linux":
		if v := lookup("XDG_CONFIG_HOME"); v != "" {
			base.Config = v
		}
		base.Data = lookup("XDG_DATA_HOME")
		if base.Data == "" && strings.TrimSpace(home) != "" {
			base.Data = filepath.Join(home, ".local", "share")
		}
	case "windows":
		if v := lookup("APPDATA"); v != "" {
			base.Config = v
		}
		base.Data = lookup("LOCALAPPDATA")
	}
	if base.Data == "" {
		base.Data = base.Config
	}
	if base.Config == "" || base.Data == "" {
		return BaseDirs{}, fmt.Errorf("resolve %s dirs: %w", goos, ErrNoBaseDir)
	}
	return base, nil
}

// ResolveIn lays out app directories under base. Dev mode uses a separate "<app>-dev" tree so
// experiments never touch the real config.
func ResolveIn(base BaseDirs, opts Options) (Paths, error) {
	if strings.TrimSpace(base.Config) == "" || strings.TrimSpace(base.Data) == "" {
		return Paths{}, ErrNoBaseDir
	}
	app := strings.TrimSpace(opts.AppName)
	if app == "" {
		app = defaultAppName
	}
	if opts.DevMode {
		app += "-dev"
	}
	dataDir := filepath.Join(base.Data, app)
	return Paths{
		App:        app,
		ConfigPath: filepath.Join(base.Config, app, "config.toml"),
		DataDir:    dataDir,
		LogDir:     filepath.Join(dataDir, "log"),
	}, nil
}

// WithConfigPath returns p reading config from path instead of the platform default.
func (p Paths) WithConfigPath(path string) Paths {
	if path = strings.TrimSpace(path); path != "" {
		p.ConfigPath = path
	}
	return p
}

// LogDirFor returns the log directory for a configured override. Blank means LogDir; relative
// overrides sit next to the config file.
func (p Paths) LogDirFor(override string) string {
	override = strings.TrimSpace(override)
	switch {
	case override == "":
		return p.LogDir
	case filepath.IsAbs(override):
		return filepath.Clean(override)
	default:
		return filepath.Join(filepath.Dir(p.ConfigPath), override)
	}
}

// LogFile returns the per-day log file inside LogDirFor(override).
func (p Paths) LogFile(override string, day time.Time) string {
	name := fmt.Sprintf("%s-%s.log", fileStem(p.App), day.Format("20060102"))
	return filepath.Join(p.LogDirFor(override), name)
}

// fileStem makes name safe to use as a file name prefix.
func fileStem(name string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if stem = strings.Trim(stem, "-"); stem == "" {
		return defaultAppName
	}
	return stem
}
