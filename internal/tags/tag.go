package tags

import (
	"strings"

	"tome/internal/diag"
)

// Tag is one `@name ...` entry of a docstring.
type Tag struct {
	Name  string   `msgpack:"name"`
	Text  string   `msgpack:"text,omitempty"`
	Types []string `msgpack:"types,omitempty"`
	// Subject is the parameter name of @param/@yieldparam/@option or the
	// reference of @see.
	Subject string `msgpack:"subject,omitempty"`
	Title   string `msgpack:"title,omitempty"`

	Option   *Option   `msgpack:"option,omitempty"`
	Overload *Overload `msgpack:"overload,omitempty"`

	// Line is the 0-based line of the tag within its comment block.
	Line int `msgpack:"line"`
	// Inherited marks transitive tags copied from an enclosing namespace.
	Inherited bool `msgpack:"inherited,omitempty"`
}

// Option is the key part of `@option opts [T] :key (default) text`.
type Option struct {
	Key      string   `msgpack:"key" json:"key"`
	Types    []string `msgpack:"types,omitempty" json:"types,omitempty"`
	Defaults []string `msgpack:"defaults,omitempty" json:"defaults,omitempty"`
	Text     string   `msgpack:"text,omitempty" json:"text,omitempty"`
}

// Overload is an alternative signature with its own docstring.
type Overload struct {
	Signature  string      `msgpack:"signature"`
	Method     string      `msgpack:"method"`
	Parameters []Parameter `msgpack:"parameters,omitempty"`
	Docstring  Docstring   `msgpack:"docstring"`
}

// Parameter is a `name` / `name = default` pair from a signature.
type Parameter struct {
	Name    string `msgpack:"name"`
	Default string `msgpack:"default,omitempty"`
}

// Directive is an `@!name` line. Body holds the indented docstring that
// follows `@!attribute` and `@!method`.
type Directive struct {
	Name string     `msgpack:"name"`
	Tag  Tag        `msgpack:"tag"`
	Body *Docstring `msgpack:"body,omitempty"`
}

// Problem is a malformed or unknown tag found while parsing.
type Problem struct {
	Line    int
	Code    diag.Code
	Message string
}

// Docstring is a parsed comment block: free text, tags in source order and
// directives.
type Docstring struct {
	Text       string      `msgpack:"text,omitempty"`
	Tags       []Tag       `msgpack:"tags,omitempty"`
	Directives []Directive `msgpack:"directives,omitempty"`

	Problems []Problem `msgpack:"-"`
}

// Tag returns the first tag named name.
func (d *Docstring) Tag(name string) (Tag, bool) {
	for _, t := range d.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// TagsNamed returns all tags named name in source order.
func (d *Docstring) TagsNamed(name string) []Tag {
	var out []Tag
	for _, t := range d.Tags {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func (d *Docstring) HasTag(name string) bool {
	_, ok := d.Tag(name)
	return ok
}

// Blank reports whether the docstring carries no text and no tags of its
// own; inherited tags do not document anything.
func (d *Docstring) Blank() bool {
	if strings.TrimSpace(d.Text) != "" {
		return false
	}
	for _, t := range d.Tags {
		if !t.Inherited {
			return false
		}
	}
	return true
}

// Summary returns the first sentence (or first paragraph line) of the text.
func (d *Docstring) Summary() string {
	text := strings.TrimSpace(d.Text)
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = text[:i]
	}
	text = strings.Join(strings.Fields(text), " ")
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 && (i+1 == len(text) || text[i+1] == ' ') {
				return text[:i+1]
			}
		}
	}
	return text
}
