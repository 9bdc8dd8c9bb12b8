// Package render writes command results in the format the user asked for.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jedib0t/go-pretty/v6/table"
)

// A Renderer formats the provided value and outputs it to the writer.
type Renderer interface {
	Render(w io.Writer, value any) error
}

var ErrUnknownFormat = errors.New("unknown output format")

// ForFormat returns the renderer for an --output flag value: "plain",
// "json" or "template=<go template>".
func ForFormat(format string) (Renderer, error) {
	switch {
	case format == "" || format == "plain":
		return Table{}, nil
	case format == "json":
		return JSON{Indent: true}, nil
	case strings.HasPrefix(format, "template="):
		return NewTemplate(strings.TrimPrefix(format, "template=")), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSON is a renderer that marshals the value to JSON
type JSON struct {
	Indent bool
}

// Render implements the Renderer interface
func (j JSON) Render(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}

// Tabular values know how to lay themselves out as rows.
type Tabular interface {
	Header() table.Row
	Rows() []table.Row
}

// Table draws Tabular values with box characters. Anything else is printed
// with its default format.
type Table struct{}

// Render implements the Renderer interface
func (Table) Render(w io.Writer, value any) error {
	tv, ok := value.(Tabular)
	if !ok {
		_, err := fmt.Fprintln(w, value)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	if h := tv.Header(); len(h) > 0 {
		t.AppendHeader(h)
	}
	t.AppendRows(tv.Rows())
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

// Template renders a template with the provided value
type Template struct {
	tmpl string
}

// NewTemplate creates a Template with the given string template
func NewTemplate(tmpl string) *Template {
	return &Template{
		tmpl: tmpl,
	}
}

// Render implements the Renderer interface
func (t *Template) Render(w io.Writer, value any) error {
	tmpl, err := template.New("tmpl").Parse(t.tmpl)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if err = tmpl.Execute(w, value); err != nil {
		return fmt.Errorf("error rendering template: %w", err)
	}

	return nil
}
