package tags

import (
	"slices"
	"sync"
)

// Definition describes a known tag.
type Definition struct {
	Name  string
	Title string
	Shape Shape
}

// Library maps tag names to their shapes. It is extended at configuration
// time with Define and read concurrently by the parse workers.
type Library struct {
	mu         sync.RWMutex
	defs       map[string]Definition
	transitive map[string]bool
}

var defaultDefinitions = []Definition{
	{"abstract", "Abstract", ShapeText},
	{"api", "API Visibility", ShapeText},
	{"attr", "Attribute", ShapeTypesAndName},
	{"attr_reader", "Attribute Getter", ShapeTypesAndName},
	{"attr_writer", "Attribute Setter", ShapeTypesAndName},
	{"author", "Author", ShapeText},
	{"deprecated", "Deprecated", ShapeText},
	{"example", "Example", ShapeTitleAndText},
	{"note", "Note", ShapeText},
	{"option", "Options Hash", ShapeOption},
	{"overload", "Overloads", ShapeOverload},
	{"param", "Parameters", ShapeTypesAndName},
	{"private", "Private", ShapeText},
	{"raise", "Raises", ShapeTypes},
	{"return", "Returns", ShapeTypes},
	{"see", "See Also", ShapeName},
	{"since", "Since", ShapeText},
	{"todo", "Todo Item", ShapeText},
	{"version", "Version", ShapeText},
	{"yield", "Yields", ShapeTypes},
	{"yieldparam", "Yield Parameters", ShapeTypesAndName},
	{"yieldreturn", "Yield Returns", ShapeTypes},
}

// directives understood by the declaration visitor.
var knownDirectives = map[string]bool{
	"attribute":  true,
	"method":     true,
	"visibility": true,
	"scope":      true,
	"group":      true,
	"endgroup":   true,
}

// NewLibrary returns a library without any tag definitions.
func NewLibrary() *Library {
	return &Library{
		defs:       make(map[string]Definition),
		transitive: make(map[string]bool),
	}
}

// DefaultLibrary returns a library with the standard tag vocabulary.
func DefaultLibrary() *Library {
	l := NewLibrary()
	for _, d := range defaultDefinitions {
		l.defs[d.Name] = d
	}
	l.transitive["since"] = true
	l.transitive["api"] = true
	return l
}

// Define adds or replaces a tag definition.
func (l *Library) Define(name, title string, shape Shape) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if title == "" {
		title = name
	}
	l.defs[name] = Definition{Name: name, Title: title, Shape: shape}
}

// SetTransitive marks name as inherited from the enclosing namespace when a
// declaration does not carry it.
func (l *Library) SetTransitive(name string, on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on {
		l.transitive[name] = true
	} else {
		delete(l.transitive, name)
	}
}

func (l *Library) Lookup(name string) (Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.defs[name]
	return d, ok
}

func (l *Library) Transitive(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transitive[name]
}

// TransitiveNames returns the transitive tag names, sorted.
func (l *Library) TransitiveNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.transitive))
	for n := range l.transitive {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Definitions returns all definitions sorted by name.
func (l *Library) Definitions() []Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Definition, 0, len(l.defs))
	for _, d := range l.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Definition) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// IsDirective reports whether name is a known `@!` directive.
func IsDirective(name string) bool {
	return knownDirectives[name]
}
