// Package printer formats extension objects and lists for haloctl output.
// Objects are printed from their JSON form, so typed and unstructured values
// print the same way.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"k8s.io/apimachinery/pkg/util/duration"
	"sigs.k8s.io/yaml"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatName  Format = "name"
)

// Printer writes an object or a list page to w.
type Printer interface {
	Print(w io.Writer, v interface{}) error
}

// Column is one table column.
type Column struct {
	Header string
	Value  func(obj map[string]interface{}, now time.Time) string
}

// Field returns a column printing the value at path.
func Field(header string, path ...string) Column {
	return Column{
		Header: header,
		Value: func(obj map[string]interface{}, _ time.Time) string {
			v, ok := lookup(obj, path)
			if !ok || v == nil {
				return ""
			}
			switch val := v.(type) {
			case string:
				return val
			case []interface{}:
				parts := make([]string, len(val))
				for i, p := range val {
					parts[i] = fmt.Sprint(p)
				}
				return strings.Join(parts, ",")
			case float64:
				return formatNumber(val)
			}
			return fmt.Sprint(v)
		},
	}
}

// Age returns a column printing the time since the RFC 3339 timestamp at path.
func Age(header string, path ...string) Column {
	return Column{
		Header: header,
		Value: func(obj map[string]interface{}, now time.Time) string {
			v, _ := lookup(obj, path)
			s, _ := v.(string)
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return "<unknown>"
			}
			return duration.HumanDuration(now.Sub(ts))
		},
	}
}

// DefaultColumns are used for resources without their own columns.
func DefaultColumns() []Column {
	return []Column{
		Field("NAME", "metadata", "name"),
		Field("KIND", "kind"),
		Field("VERSION", "metadata", "version"),
		Age("AGE", "metadata", "creationTimestamp"),
	}
}

// New returns the printer for format. columns are only used by the table
// printer; nil selects DefaultColumns.
func New(format string, columns []Column) (Printer, error) {
	switch Format(format) {
	case FormatJSON:
		return jsonPrinter{}, nil
	case FormatYAML:
		return yamlPrinter{}, nil
	case FormatName:
		return namePrinter{}, nil
	case FormatTable, "":
		if columns == nil {
			columns = DefaultColumns()
		}
		return &TablePrinter{Columns: columns, Now: time.Now}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (one of: table, json, yaml, name)", format)
}

type jsonPrinter struct{}

func (jsonPrinter) Print(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type yamlPrinter struct{}

func (yamlPrinter) Print(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return err
	}

	_, err = w.Write(out)
	return err
}

// namePrinter prints kind/name per object, lowercased like kubectl.
type namePrinter struct{}

func (namePrinter) Print(w io.Writer, v interface{}) error {
	items, err := Objects(v)
	if err != nil {
		return err
	}

	for _, obj := range items {
		kind, _ := lookup(obj, []string{"kind"})
		name, _ := lookup(obj, []string{"metadata", "name"})
		if _, err := fmt.Fprintf(w, "%s/%v\n", strings.ToLower(fmt.Sprint(kind)), name); err != nil {
			return err
		}
	}
	return nil
}

// TablePrinter renders objects as a borderless table.
type TablePrinter struct {
	Columns   []Column
	NoHeaders bool
	Now       func() time.Time
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func (p *TablePrinter) Print(w io.Writer, v interface{}) error {
	items, err := Objects(v)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No resources found.")
		return err
	}

	now := p.Now()
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	if !p.NoHeaders {
		headers := make([]string, len(p.Columns))
		for i, c := range p.Columns {
			headers[i] = c.Header
		}
		t.Headers(headers...)
	}

	for _, obj := range Rows(items, p.Columns, now) {
		t.Row(obj...)
	}

	_, err = fmt.Fprintln(w, t.Render())
	return err
}

// Rows renders the cells of every object.
func Rows(items []map[string]interface{}, columns []Column, now time.Time) [][]string {
	rows := make([][]string, len(items))
	for i, obj := range items {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = c.Value(obj, now)
		}
		rows[i] = row
	}
	return rows
}

// Objects returns the objects in v: the items of a list page, or v itself.
func Objects(v interface{}) ([]map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}

	rawItems, isList := generic["items"].([]interface{})
	if !isList {
		return []map[string]interface{}{generic}, nil
	}

	items := make([]map[string]interface{}, 0, len(rawItems))
	for _, item := range rawItems {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected list item of type %T", item)
		}
		items = append(items, obj)
	}
	return items, nil
}

func lookup(obj map[string]interface{}, path []string) (interface{}, bool) {
	var cur interface{} = obj
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
