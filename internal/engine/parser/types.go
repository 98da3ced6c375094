package parser

import "sort"

// File is the declaration view of one parsed source file.
type File struct {
	Path         string
	Language     string
	Declarations []Declaration
}

type Declaration struct {
	Name     string
	Kind     DeclarationKind
	Location Location
}

type DeclarationKind int

const (
	KindFunction DeclarationKind = iota
	KindMethod
)

func (k DeclarationKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	default:
		return "function"
	}
}

type Location struct {
	File   string
	Line   int
	Column int
}

// Names returns the distinct declaration names of the file, sorted.
func (f *File) Names() []string {
	set := make(map[string]struct{}, len(f.Declarations))
	for _, d := range f.Declarations {
		set[d.Name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declares reports whether any declaration in the file is named name.
func (f *File) Declares(name string) bool {
	for _, d := range f.Declarations {
		if d.Name == name {
			return true
		}
	}
	return false
}
