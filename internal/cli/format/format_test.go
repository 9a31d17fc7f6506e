package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: Table},
		{input: "table", want: Table},
		{input: "JSON", want: JSON},
		{input: "yml", want: YAML},
		{input: "yaml", want: YAML},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRecords_Table(t *testing.T) {
	records := []map[string]interface{}{
		{"name": "Ada", "id": float64(1), "email": "ada@example.com"},
		{"name": "Grace", "id": float64(2), "custom_attributes": map[string]interface{}{"plan": "pro"}},
	}

	var buf bytes.Buffer
	if err := Records(&buf, Table, records, false); err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "NAME", "Ada", "Grace", "ada@example.com", `{"plan":"pro"}`} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Records(&buf, Table, nil, false); err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if got := buf.String(); got != "No records.\n" {
		t.Errorf("Records() = %q", got)
	}

	buf.Reset()
	if err := Records(&buf, JSON, nil, false); err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty JSON records = %q, want []", got)
	}
}

func TestRecords_JSONAndYAML(t *testing.T) {
	records := []map[string]interface{}{{"id": float64(7), "status": "open"}}

	var buf bytes.Buffer
	if err := Records(&buf, JSON, records, false); err != nil {
		t.Fatalf("Records(JSON) error = %v", err)
	}
	if !strings.Contains(buf.String(), `"status": "open"`) {
		t.Errorf("JSON output = %s", buf.String())
	}

	buf.Reset()
	if err := Records(&buf, YAML, records, false); err != nil {
		t.Fatalf("Records(YAML) error = %v", err)
	}
	if !strings.Contains(buf.String(), "status: open") {
		t.Errorf("YAML output = %s", buf.String())
	}
}

func TestColumns(t *testing.T) {
	got := Columns([]map[string]interface{}{
		{"name": "a", "id": 1},
		{"email": "b", "id": 2},
	})
	want := []string{"id", "email", "name"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "float", in: float64(42), want: "42"},
		{name: "bool", in: true, want: "true"},
		{name: "list", in: []interface{}{"a", "b"}, want: `["a","b"]`},
		{name: "newline", in: "one\ntwo", want: "one two"},
		{name: "ansi stripped", in: "\x1b[31mred\x1b[0m", want: "red"},
		{name: "truncated", in: strings.Repeat("x", 60), want: strings.Repeat("x", maxCellWidth-3) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_TableMap(t *testing.T) {
	var buf bytes.Buffer
	err := Value(&buf, Table, map[string]interface{}{"baseUrl": "https://app.chatwoot.com", "accountId": "1"}, false)
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "baseUrl") || !strings.Contains(out, "https://app.chatwoot.com") {
		t.Errorf("Value() output = %s", out)
	}
}

func TestMarkdown(t *testing.T) {
	plain, err := Markdown("# contact create\n\nCreate a contact", false)
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if !strings.Contains(plain, "# contact create") {
		t.Errorf("non-TTY markdown should be returned as-is, got %q", plain)
	}

	rendered, err := Markdown("# contact create\n\nCreate a contact", true)
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if !strings.Contains(rendered, "contact create") {
		t.Errorf("rendered markdown lost the heading: %q", rendered)
	}

	if _, err := Markdown(strings.Repeat("x", maxMarkdownSize+1), false); err == nil {
		t.Error("oversized markdown should fail")
	}
}

func TestHighlight(t *testing.T) {
	content := `{"id": 1}`
	if got := Highlight(content, "json", false); got != content {
		t.Errorf("non-TTY highlight changed content: %q", got)
	}
	if got := Highlight(content, "", true); got != content {
		t.Errorf("empty language should be unchanged: %q", got)
	}
	if got := Highlight(content, "json", true); !strings.Contains(got, "\x1b[") {
		t.Errorf("TTY highlight should add escapes: %q", got)
	}
}
