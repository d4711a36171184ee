package code

import (
	"slices"

	"tome/internal/tags"
)

// FileRef is one definition site.
type FileRef struct {
	File string `msgpack:"file" json:"file"`
	Line int    `msgpack:"line" json:"line"`
}

// Parameter is a method parameter as written: `a`, `b = 1`, `*rest`,
// `key:`, `**opts`, `&blk`.
type Parameter struct {
	Name    string `msgpack:"name" json:"name"`
	Default string `msgpack:"default,omitempty" json:"default,omitempty"`
}

type MixinKind uint8

const (
	Include MixinKind = iota
	Extend
	Prepend
)

func (m MixinKind) String() string {
	switch m {
	case Extend:
		return "extend"
	case Prepend:
		return "prepend"
	default:
		return "include"
	}
}

// Mixin is an include/extend/prepend of a module path (as written,
// resolved lazily by the query layer).
type Mixin struct {
	Kind MixinKind `msgpack:"kind"`
	Path string    `msgpack:"path"`
}

// Contribution is what one file adds to a namespace. Merged namespace
// state is recomputed from the contributions, so removing a file takes its
// docstring, superclass and mixins with it.
type Contribution struct {
	File       string         `msgpack:"file"`
	Docstring  tags.Docstring `msgpack:"docstring"`
	Superclass string         `msgpack:"superclass,omitempty"`
	Mixins     []Mixin        `msgpack:"mixins,omitempty"`
}

// Attr records which accessors an attribute declares.
type Attr struct {
	Read  bool `msgpack:"read" json:"read"`
	Write bool `msgpack:"write" json:"write"`
}

// Declaration is one documented object. Path is the registry key; Namespace
// is the parent's path, never a pointer.
type Declaration struct {
	Path      string `msgpack:"path"`
	Name      string `msgpack:"name"`
	Kind      Kind   `msgpack:"kind"`
	Namespace string `msgpack:"namespace"`

	File  string    `msgpack:"file"`
	Line  int       `msgpack:"line"`
	Files []FileRef `msgpack:"files,omitempty"`

	Docstring  tags.Docstring `msgpack:"docstring"`
	Visibility Visibility     `msgpack:"visibility"`
	Scope      Scope          `msgpack:"scope"`
	Group      string         `msgpack:"group,omitempty"`

	// methods
	Signature  string      `msgpack:"signature,omitempty"`
	Parameters []Parameter `msgpack:"parameters,omitempty"`
	// AliasOf is the path of the aliased method.
	AliasOf string `msgpack:"alias_of,omitempty"`
	// Explicit is false for methods synthesised from @!method/@!attribute.
	Explicit bool `msgpack:"explicit"`

	// classes and modules
	Superclass string  `msgpack:"superclass,omitempty"`
	Mixins     []Mixin `msgpack:"mixins,omitempty"`
	// Contributions per file, in insertion order; maintained by the registry.
	Contributions []Contribution `msgpack:"contributions,omitempty"`

	// constants and class variables
	Value string `msgpack:"value,omitempty"`

	Attr Attr `msgpack:"attr"`

	Source string `msgpack:"source,omitempty"`
}

// Tags returns the docstring's tags in source order.
func (d *Declaration) Tags() []tags.Tag {
	return d.Docstring.Tags
}

// DisplayPath renders the path, with "(root)" for the root object.
func (d *Declaration) DisplayPath() string {
	return Display(d.Path)
}

// AddFile records a definition site once.
func (d *Declaration) AddFile(ref FileRef) {
	if !slices.Contains(d.Files, ref) {
		d.Files = append(d.Files, ref)
	}
}

// AddMixin appends m unless it is already present.
func (d *Declaration) AddMixin(m Mixin) {
	if !slices.Contains(d.Mixins, m) {
		d.Mixins = append(d.Mixins, m)
	}
}

// Clone returns a deep-enough copy for snapshots: slices are copied, the
// docstring's nested structures are shared and treated as immutable.
func (d *Declaration) Clone() *Declaration {
	c := *d
	c.Files = slices.Clone(d.Files)
	c.Parameters = slices.Clone(d.Parameters)
	c.Mixins = slices.Clone(d.Mixins)
	c.Contributions = slices.Clone(d.Contributions)
	c.Docstring.Tags = slices.Clone(d.Docstring.Tags)
	c.Docstring.Directives = slices.Clone(d.Docstring.Directives)
	return &c
}

// NewRoot returns the root namespace declaration.
func NewRoot() *Declaration {
	return &Declaration{Path: RootPath, Kind: KindRoot, Explicit: true}
}
