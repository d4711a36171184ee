package code

import "strings"

// RootPath is the path of the root namespace.
const RootPath = ""

// Path separators: A::B for namespaces and constants, A#m for instance
// methods, A.m for class methods.
const (
	SepNamespace = "::"
	SepInstance  = "#"
	SepClass     = "."
)

// Join builds the path of a child declaration inside namespace ns.
func Join(ns, name string, kind Kind, scope Scope) string {
	switch kind {
	case KindMethod, KindAttribute:
		if scope == Class {
			return ns + SepClass + name
		}
		return ns + SepInstance + name
	}
	if ns == RootPath {
		return name
	}
	return ns + SepNamespace + name
}

// Split breaks a path into its namespace, separator and local name.
// Namespace segments are constants, so the first `#` or `.` is always the
// method separator; everything after it (`==`, `[]=`, `-@`) is the name.
func Split(path string) (ns, sep, name string) {
	if i := strings.IndexAny(path, "#."); i >= 0 {
		return path[:i], path[i : i+1], path[i+1:]
	}
	if i := strings.LastIndex(path, SepNamespace); i >= 0 {
		return path[:i], SepNamespace, path[i+len(SepNamespace):]
	}
	return RootPath, "", path
}

// Parent returns the namespace path of path.
func Parent(path string) string {
	ns, _, _ := Split(path)
	return ns
}

// Base returns the local name of path.
func Base(path string) string {
	_, _, name := Split(path)
	return name
}

// Display renders the root path as "(root)".
func Display(path string) string {
	if path == RootPath {
		return "(root)"
	}
	return path
}

// IsMethodPath reports whether path names a method (contains # or . in its
// last segment).
func IsMethodPath(path string) bool {
	_, sep, _ := Split(path)
	return sep == SepInstance || sep == SepClass
}

// ConstPath converts a Ruby constant reference (`A::B`, `::A::B`) into a
// registry path.
func ConstPath(ref string) string {
	return strings.TrimPrefix(ref, SepNamespace)
}
