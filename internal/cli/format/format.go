package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Format is an output format for command results.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

const (
	maxMarkdownSize = 5 * 1024 * 1024 // 5MB
	maxCodeSize     = 2 * 1024 * 1024 // 2MB

	// maxCellWidth truncates table cells
	maxCellWidth = 48
)

// ansiEscapeRegex matches ANSI escape sequences for sanitization.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeANSI removes ANSI escape sequences from a string.
func sanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Parse reads a format name. Empty selects Table.
func Parse(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", Table:
		return Table, nil
	case JSON:
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", name)
}

// Records writes output records. Tables get one column per top-level key
// with "id" first; JSON and YAML are syntax highlighted on a TTY.
func Records(w io.Writer, f Format, records []map[string]interface{}, isTTY bool) error {
	switch f {
	case JSON, YAML:
		if records == nil {
			records = []map[string]interface{}{}
		}
		return Value(w, f, records, isTTY)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}

	columns := Columns(records)
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			if v, ok := record[c]; ok {
				row[i] = Cell(v)
			}
		}
		rows = append(rows, row)
	}
	return WriteTable(w, columns, rows)
}

// WriteTable writes rows under header.
func WriteTable(w io.Writer, header []string, rows [][]string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	table := tablewriter.NewWriter(w)
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// Value writes a single value as JSON or YAML. Table falls back to a
// key/value table for maps and to JSON otherwise.
func Value(w io.Writer, f Format, v interface{}, isTTY bool) error {
	switch f {
	case YAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return write(w, Highlight(string(out), "yaml", isTTY))

	case Table:
		if m, ok := v.(map[string]interface{}); ok {
			return KeyValues(w, m)
		}
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return write(w, Highlight(string(out)+"\n", "json", isTTY))
}

// KeyValues writes a two-column table of m in key order.
func KeyValues(w io.Writer, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, Cell(m[k])})
	}
	return WriteTable(w, []string{"Field", "Value"}, rows)
}

// Columns returns the union of record keys, "id" first then sorted.
func Columns(records []map[string]interface{}) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, record := range records {
		for k := range record {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	sort.Slice(columns, func(i, j int) bool {
		if columns[i] == "id" || columns[j] == "id" {
			return columns[i] == "id"
		}
		return columns[i] < columns[j]
	})
	return columns
}

// Cell renders one table cell. Scalars print as text, nested values as
// compact JSON, and long values are truncated.
func Cell(v interface{}) string {
	var s string
	switch v.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		s = string(out)
	default:
		str, err := cast.ToStringE(v)
		if err != nil {
			str = fmt.Sprintf("%v", v)
		}
		s = str
	}

	s = sanitizeANSI(strings.ReplaceAll(s, "\n", " "))
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-3]) + "..."
	}
	return s
}

// Markdown renders markdown with ANSI formatting if stdout is a TTY.
// Falls back to plain text if glamour fails or stdout is not a TTY.
func Markdown(content string, isTTY bool) (string, error) {
	if len(content) > maxMarkdownSize {
		return "", fmt.Errorf("output size (%d bytes) exceeds maximum for markdown (%d bytes)", len(content), maxMarkdownSize)
	}
	if !isTTY {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content, nil
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}
	return rendered, nil
}

// Highlight applies chroma syntax highlighting on a TTY. Unknown languages
// and oversized content are returned unchanged.
func Highlight(content, language string, isTTY bool) string {
	if !isTTY || language == "" || len(content) > maxCodeSize {
		return content
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, language, "terminal256", "monokai"); err != nil {
		return content
	}
	return buf.String()
}

func write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
