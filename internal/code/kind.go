package code

import "fmt"

// Kind classifies a declaration.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindRoot
	KindModule
	KindClass
	KindMethod
	KindConstant
	KindAttribute
	KindClassVariable
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindConstant:
		return "constant"
	case KindAttribute:
		return "attribute"
	case KindClassVariable:
		return "classvariable"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindRoot; k <= KindClassVariable; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown object kind %q", s)
}

// IsNamespace reports whether declarations of this kind can own children.
func (k Kind) IsNamespace() bool {
	return k == KindRoot || k == KindModule || k == KindClass
}

type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// ParseVisibility accepts "public", "protected" and "private".
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "public":
		return Public, true
	case "protected":
		return Protected, true
	case "private":
		return Private, true
	}
	return Public, false
}

// Scope tells instance methods from class (singleton) methods.
type Scope uint8

const (
	Instance Scope = iota
	Class
)

func (s Scope) String() string {
	if s == Class {
		return "class"
	}
	return "instance"
}

// ParseScope accepts "instance" and "class".
func ParseScope(s string) (Scope, bool) {
	switch s {
	case "instance":
		return Instance, true
	case "class":
		return Class, true
	}
	return Instance, false
}
