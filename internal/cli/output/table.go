package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// records returns the rows as objects keyed by lower-cased header.
func (t *Table) records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(row))
		for i, cell := range row {
			if i < len(t.Headers) {
				rec[strings.ToLower(t.Headers[i])] = cell
			}
		}
		out = append(out, rec)
	}
	return out
}

// plain unwraps tables for the structured formatters.
func plain(data any) any {
	switch t := data.(type) {
	case *Table:
		return t.records()
	case Table:
		return t.records()
	}
	return data
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	NoHeaders bool
}

// Format renders data as a table. Tables render directly. Other values are
// converted through their JSON form: objects become FIELD/VALUE rows and
// lists of objects become one row per element. Anything else is printed as
// JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, err := toTable(data)
	if err != nil {
		return (&JSONFormatter{}).Format(w, data)
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// toTable converts data through its JSON encoding so json tags name the
// columns and embedded structs are flattened.
func toTable(data any) (*Table, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	switch v := generic.(type) {
	case map[string]any:
		t := NewTable("FIELD", "VALUE")
		for _, k := range fieldOrder(data, v) {
			t.AddRow(k, formatValue(v[k]))
		}
		return t, nil
	case []any:
		return listToTable(data, v)
	default:
		return nil, fmt.Errorf("unsupported type %T", data)
	}
}

func listToTable(data any, items []any) (*Table, error) {
	if len(items) == 0 {
		return &Table{}, nil
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		t := NewTable("VALUE")
		for _, it := range items {
			t.AddRow(formatValue(it))
		}
		return t, nil
	}

	var elem any
	if rv := reflect.ValueOf(data); rv.Kind() == reflect.Slice && rv.Len() > 0 {
		elem = rv.Index(0).Interface()
	}
	cols := fieldOrder(elem, first)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToUpper(c)
	}
	t := NewTable(headers...)
	for _, it := range items {
		m, _ := it.(map[string]any)
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = formatValue(m[c])
		}
		t.AddRow(row...)
	}
	return t, nil
}

// fieldOrder lists the keys of m in struct declaration order when src is a
// struct, and sorted otherwise.
func fieldOrder(src any, m map[string]any) []string {
	var keys []string
	seen := make(map[string]bool, len(m))
	if rt := reflect.TypeOf(src); rt != nil {
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt.Kind() == reflect.Struct {
			for _, name := range jsonNames(rt) {
				if _, ok := m[name]; ok && !seen[name] {
					keys = append(keys, name)
					seen[name] = true
				}
			}
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func jsonNames(rt reflect.Type) []string {
	var names []string
	for i := range rt.NumField() {
		f := rt.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				names = append(names, jsonNames(ft)...)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if tag == "" {
			tag = f.Name
		}
		names = append(names, tag)
	}
	return names
}

// formatValue formats a decoded JSON value for display.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.4f", x)
	case bool:
		return fmt.Sprintf("%t", x)
	case []any:
		if len(x) == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", len(x))
	case map[string]any:
		if len(x) == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", len(x))
	default:
		return fmt.Sprintf("%v", x)
	}
}
