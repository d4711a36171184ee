package tags

import (
	"fmt"
	"strings"
)

// Shape selects how the text after `@name` is split into tag fields.
type Shape uint8

const (
	// ShapeText: free text.
	ShapeText Shape = iota
	// ShapeTitleAndText: first line is the title, the rest is text (`@example`).
	ShapeTitleAndText
	// ShapeTypes: optional `[T, U]` list followed by text (`@return`).
	ShapeTypes
	// ShapeTypesAndName: types plus a subject name (`@param [T] name text`,
	// `@param name [T] text`, `@param name: T — text`).
	ShapeTypesAndName
	// ShapeTypesAndTitle: types, then the rest of the first line as the title.
	ShapeTypesAndTitle
	// ShapeName: the first word is the subject (`@see Foo#bar`).
	ShapeName
	// ShapeOption: `@option hash [T] :key (default) text`.
	ShapeOption
	// ShapeOverload: a method signature followed by nested tags.
	ShapeOverload
	// ShapeRawTitleAndText keeps the text's leading whitespace.
	ShapeRawTitleAndText
)

var shapeNames = [...]string{
	ShapeText:            "text",
	ShapeTitleAndText:    "title_and_text",
	ShapeTypes:           "types",
	ShapeTypesAndName:    "types_and_name",
	ShapeTypesAndTitle:   "types_and_title",
	ShapeName:            "name",
	ShapeOption:          "option",
	ShapeOverload:        "overload",
	ShapeRawTitleAndText: "raw_title_and_text",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// ParseShape maps a config name ("types_and_name", "text", ...) to a Shape.
// An empty name means ShapeText.
func ParseShape(name string) (Shape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ShapeText, nil
	}
	n = strings.ReplaceAll(n, "-", "_")
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}
	return ShapeText, fmt.Errorf("unknown tag shape %q", name)
}
