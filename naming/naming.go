// Package naming picks names that do not collide with their siblings.
package naming

import (
	"path"
	"strconv"
	"strings"
)

// Style selects how a disambiguator is attached to a name.
type Style int

const (
	// UntitledStyle produces base-1.ext, base-2.ext, ... for new files.
	UntitledStyle Style = iota
	// CopyStyle produces "base (1).ext", "base (2).ext", ... for uploads.
	CopyStyle
	// ProjectStyle produces "name (1)", "name (2)", ... for projects.
	ProjectStyle
)

// Resolve returns requested if no member of existing equals it. Otherwise it
// tries disambiguators 1, 2, 3, ... in the given style and returns the first
// candidate that is free.
func Resolve(requested string, existing []string, style Style) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	if !taken[requested] {
		return requested
	}
	for n := 1; ; n++ {
		if candidate := Candidate(requested, n, style); !taken[candidate] {
			return candidate
		}
	}
}

// Candidate formats the n-th disambiguated form of name.
func Candidate(name string, n int, style Style) string {
	num := strconv.Itoa(n)
	switch style {
	case UntitledStyle:
		base, ext := split(name)
		return base + "-" + num + ext
	case CopyStyle:
		base, ext := split(name)
		return base + " (" + num + ")" + ext
	default:
		return name + " (" + num + ")"
	}
}

// split separates the extension from name. A leading dot does not start an
// extension.
func split(name string) (base, ext string) {
	ext = path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
