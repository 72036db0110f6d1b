package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap holds every board binding.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	addColumn   key.Binding
	addTask     key.Binding
	editTask    key.Binding
	editColumn  key.Binding
	deleteTask  key.Binding
	deleteCol   key.Binding
	grabTask    key.Binding
	grabColumn  key.Binding
	drop        key.Binding
	cancel      key.Binding
	copyTask    key.Binding
	taskInfo    key.Binding
	activityLog key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload config")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addColumn:   key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "new column")),
		addTask:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		editColumn:  key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "rename column")),
		deleteTask:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete task")),
		deleteCol:   key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete column")),
		grabTask:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab task")),
		grabColumn:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab column")),
		drop:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		copyTask:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		taskInfo:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task info")),
		activityLog: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "activity log")),
	}
}

// applyConfig replaces configurable bindings, keeping defaults for blank entries.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.addColumn, cfg.AddColumn, "C", "new column")
	configureBinding(&k.addTask, cfg.AddTask, "n", "new task")
	configureBinding(&k.grabTask, cfg.GrabTask, "space", "grab task")
	configureBinding(&k.grabColumn, cfg.GrabColumn, "g", "grab column")
	configureBinding(&k.activityLog, cfg.ActivityLog, "a", "activity log")
}

// configureBinding rebinds b to raw, or fallback when raw is blank.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys converts one configured key into matcher keys plus its help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") || value == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addColumn, k.addTask, k.editTask, k.grabTask, k.grabColumn, k.taskInfo, k.toggleHelp, k.quit,
	}
}

// FullHelp returns every binding grouped by concern.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addColumn, k.addTask, k.editTask, k.editColumn, k.deleteTask, k.deleteCol, k.copyTask},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grabTask, k.grabColumn, k.drop, k.cancel},
		{k.taskInfo, k.activityLog, k.reload, k.toggleHelp, k.quit},
	}
}
