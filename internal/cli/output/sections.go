package output

import (
	"fmt"
	"io"
	"strings"
)

// Section is one "# Name" block of an INFO reply.
type Section struct {
	Name   string
	Fields [][2]string
}

// Sections is a parsed INFO reply, in server order.
type Sections []Section

// ParseSections parses the text of an INFO reply. Lines without a colon
// outside a header are ignored.
func ParseSections(text string) Sections {
	var out Sections
	var cur *Section

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if name, ok := strings.CutPrefix(line, "# "); ok {
			out = append(out, Section{Name: name})
			cur = &out[len(out)-1]
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if cur == nil {
			out = append(out, Section{})
			cur = &out[len(out)-1]
		}
		cur.Fields = append(cur.Fields, [2]string{k, v})
	}
	return out
}

// Map returns section name to field map, for JSON and YAML output.
func (s Sections) Map() map[string]map[string]string {
	m := make(map[string]map[string]string, len(s))
	for _, sec := range s {
		fields := make(map[string]string, len(sec.Fields))
		for _, f := range sec.Fields {
			fields[f[0]] = f[1]
		}
		m[strings.ToLower(sec.Name)] = fields
	}
	return m
}

// Render writes each section as a titled KEY VALUE table.
func (s Sections) Render(w io.Writer) error {
	for i, sec := range s {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if sec.Name != "" {
			fmt.Fprintf(w, "%s\n", sec.Name)
		}
		t := &Table{}
		for _, f := range sec.Fields {
			t.AddRow(f[0], f[1])
		}
		if err := t.Render(w); err != nil {
			return err
		}
	}
	return nil
}
