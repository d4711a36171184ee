package export

import (
	"encoding/json"
	"io"

	"tome/internal/code"
	"tome/internal/registry"
	"tome/internal/tags"
)

// jsonObject is the stable JSON shape of a declaration; kinds, visibility
// and scope are rendered as names rather than enum values.
type jsonObject struct {
	Path       string           `json:"path"`
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Namespace  string           `json:"namespace"`
	File       string           `json:"file,omitempty"`
	Line       int              `json:"line,omitempty"`
	Files      []code.FileRef   `json:"files,omitempty"`
	Visibility string           `json:"visibility"`
	Scope      string           `json:"scope"`
	Group      string           `json:"group,omitempty"`
	Signature  string           `json:"signature,omitempty"`
	Parameters []code.Parameter `json:"parameters,omitempty"`
	AliasOf    string           `json:"alias_of,omitempty"`
	Superclass string           `json:"superclass,omitempty"`
	Mixins     []jsonMixin      `json:"mixins,omitempty"`
	Value      string           `json:"value,omitempty"`
	Attr       *code.Attr       `json:"attr,omitempty"`
	Explicit   bool             `json:"explicit"`
	Docstring  string           `json:"docstring,omitempty"`
	Tags       []jsonTag        `json:"tags,omitempty"`
}

type jsonMixin struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

type jsonTag struct {
	Name     string       `json:"name"`
	Types    []string     `json:"types,omitempty"`
	Subject  string       `json:"subject,omitempty"`
	Title    string       `json:"title,omitempty"`
	Text     string       `json:"text,omitempty"`
	Option   *tags.Option `json:"option,omitempty"`
	Overload string       `json:"overload,omitempty"`
}

// JSON writes every object of the store as an indented JSON array, in
// registry order.
func JSON(w io.Writer, store *registry.Store) error {
	out := make([]jsonObject, 0, store.Len())
	for d := range store.Each() {
		out = append(out, toJSON(d))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSON(d *code.Declaration) jsonObject {
	o := jsonObject{
		Path:       d.Path,
		Name:       d.Name,
		Kind:       d.Kind.String(),
		Namespace:  d.Namespace,
		File:       d.File,
		Line:       d.Line,
		Files:      d.Files,
		Visibility: d.Visibility.String(),
		Scope:      d.Scope.String(),
		Group:      d.Group,
		Signature:  d.Signature,
		Parameters: d.Parameters,
		AliasOf:    d.AliasOf,
		Superclass: d.Superclass,
		Value:      d.Value,
		Explicit:   d.Explicit,
		Docstring:  d.Docstring.Text,
	}
	if d.Kind == code.KindAttribute {
		attr := d.Attr
		o.Attr = &attr
	}
	for _, m := range d.Mixins {
		o.Mixins = append(o.Mixins, jsonMixin{Kind: m.Kind.String(), Path: m.Path})
	}
	for _, t := range d.Docstring.Tags {
		o.Tags = append(o.Tags, tagJSON(t))
	}
	return o
}

func tagJSON(t tags.Tag) jsonTag {
	j := jsonTag{Name: t.Name, Types: t.Types, Subject: t.Subject, Title: t.Title, Text: t.Text, Option: t.Option}
	if t.Overload != nil {
		j.Overload = t.Overload.Signature
	}
	return j
}
