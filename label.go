package smartbuf

import "fmt"

// Label describes what an Add or Reserve call writes. It is only rendered when
// debug provenance is enabled, so Labelf defers its formatting.
type Label interface {
	String() string
}

// Text is a constant label.
type Text string

func (t Text) String() string { return string(t) }

type formatted struct {
	format string
	args   []any
}

func (f formatted) String() string { return fmt.Sprintf(f.format, f.args...) }

// Labelf returns a label formatted with fmt.Sprintf when it is rendered.
func Labelf(format string, args ...any) Label {
	return formatted{format: format, args: args}
}

// render returns the first label's text, or "" when there is none.
func render(labels []Label) string {
	if len(labels) == 0 || labels[0] == nil {
		return ""
	}
	return labels[0].String()
}
