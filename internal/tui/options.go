package tui

// KeyConfig holds configurable key overrides. Blank fields keep the default binding.
type KeyConfig struct {
	AddColumn   string
	AddTask     string
	GrabTask    string
	GrabColumn  string
	ActivityLog string
}

// RuntimeConfig holds settings that can change while the board is open.
type RuntimeConfig struct {
	Keys KeyConfig
}

// ReloadConfigFunc reloads runtime settings from their source.
type ReloadConfigFunc func() (RuntimeConfig, error)

// Option customizes a Model.
type Option func(*Model)

// WithRuntimeConfig applies runtime settings.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg.Keys)
	}
}

// WithReloadConfigCallback sets the callback used on ReloadConfigMsg and the reload key.
func WithReloadConfigCallback(fn ReloadConfigFunc) Option {
	return func(m *Model) {
		m.reloadConfig = fn
	}
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
