package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
)

// Table collects rows and renders them with lipgloss on Flush.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the table output.
func (t *Table) Flush() {
	headerStyle := styles.Title.Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, _ = fmt.Fprintln(t.out, tbl.String())
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// vibeNames joins vibes for a table cell.
func vibeNames(vibes []vibe.Vibe) string {
	if len(vibes) == 0 {
		return "-"
	}
	names := make([]string, len(vibes))
	for i, v := range vibes {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// vibeStrings converts vibes for JSON output. It never returns nil.
func vibeStrings(vibes []vibe.Vibe) []string {
	out := make([]string, len(vibes))
	for i, v := range vibes {
		out[i] = string(v)
	}
	return out
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
