// Package render turns board snapshots into text for terminals, documents, and tools.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/evanschultz/kanboard/internal/app"
)

// Format selects one snapshot rendering.
type Format string

// Format values.
const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatPretty   Format = "pretty"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat reports an unsupported format name.
var ErrUnknownFormat = errors.New("unknown format")

// Formats lists every supported format in help order.
func Formats() []Format {
	return []Format{FormatTable, FormatMarkdown, FormatPretty, FormatJSON}
}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(raw string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Formats() {
		if format == known {
			return format, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// Write renders snap in format to w. Width bounds word wrapping for the pretty format.
func Write(w io.Writer, snap app.Snapshot, format Format, width int) error {
	var (
		out string
		err error
	)
	switch format {
	case FormatTable:
		out = Table(snap)
	case FormatMarkdown:
		out = Markdown(snap)
	case FormatPretty:
		out, err = NewMarkdownRenderer().Render(Markdown(snap), width)
	case FormatJSON:
		var raw []byte
		raw, err = JSON(snap)
		out = string(raw)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// JSON returns the indented snapshot document. Documents that fail validation are not written.
func JSON(snap app.Snapshot) ([]byte, error) {
	doc := snap.Document()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Markdown renders one heading per column and one list item per task.
func Markdown(snap app.Snapshot) string {
	var b strings.Builder
	b.WriteString("# Board\n")
	columns := snap.ColumnsInOrder()
	if len(columns) == 0 {
		b.WriteString("\n_No columns._\n")
		return b.String()
	}
	for _, column := range columns {
		b.WriteString("\n## ")
		b.WriteString(titleOrPlaceholder(column.Title, "(untitled)"))
		b.WriteString("\n\n")
		tasks := snap.TasksForColumn(column.ID)
		if len(tasks) == 0 {
			b.WriteString("_No tasks._\n")
			continue
		}
		for _, task := range tasks {
			fmt.Fprintf(&b, "- %s\n", escapeListItem(titleOrPlaceholder(task.Content, "(empty)")))
		}
	}
	return b.String()
}

// titleOrPlaceholder substitutes placeholder for blank text.
func titleOrPlaceholder(text, placeholder string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return placeholder
	}
	return text
}

// escapeListItem keeps content from being read as nested markdown structure.
func escapeListItem(text string) string {
	if strings.HasPrefix(text, "#") || strings.HasPrefix(text, "-") || strings.HasPrefix(text, "*") {
		return `\` + text
	}
	return text
}
