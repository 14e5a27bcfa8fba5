// Package identity maps raw process names onto logical applications.
//
// Names are NFC-normalized before matching so that composed and decomposed
// forms of the same display name resolve identically. Case-insensitive
// comparisons use Unicode simple folding.
package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Kind int

const (
	Standalone Kind = iota
	Ignore
	DeferredRuntime
	HelperMember
)

func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case DeferredRuntime:
		return "deferred"
	case HelperMember:
		return "helper"
	default:
		return "standalone"
	}
}

// Classification is the result of Classify. Name holds the app hint for
// HelperMember and the canonical name for Standalone.
type Classification struct {
	Kind Kind
	Name string
}

// Classify is a pure function of name.
func Classify(name string) Classification {
	if _, ok := systemProcesses[name]; ok {
		return Classification{Kind: Ignore}
	}

	name = norm.NFC.String(name)

	for _, host := range runtimeHosts {
		if strings.EqualFold(name, host) {
			return Classification{Kind: DeferredRuntime}
		}
	}

	if prefix, ok := stripHelperSuffix(name); ok {
		return Classification{Kind: HelperMember, Name: Canonical(prefix)}
	}

	return Classification{Kind: Standalone, Name: Canonical(name)}
}

// stripHelperSuffix removes the first matching helper pattern. A name that
// is only a suffix is not a helper.
func stripHelperSuffix(name string) (string, bool) {
	for _, pattern := range helperPatterns {
		if len(name) < len(pattern) {
			continue
		}
		cut := len(name) - len(pattern)
		if !strings.EqualFold(name[cut:], pattern) {
			continue
		}
		prefix := strings.TrimSpace(name[:cut])
		if prefix == "" {
			return "", false
		}
		return prefix, true
	}
	return "", false
}

// Canonical maps name through the keyword table, falling back to the
// name itself.
func Canonical(name string) string {
	if m, ok := find(name); ok {
		return m.Canonical
	}
	return name
}

func find(name string) (Mapping, bool) {
	lower := strings.ToLower(norm.NFC.String(name))
	for _, m := range mappings {
		for _, kw := range m.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return m, true
			}
		}
	}
	return Mapping{}, false
}

// Lookup returns the mapping whose canonical name equals canonical.
func Lookup(canonical string) (Mapping, bool) {
	for _, m := range mappings {
		if m.Canonical == canonical {
			return m, true
		}
	}
	return Mapping{}, false
}

// Match returns the first mapping whose keywords occur in name.
func Match(name string) (Mapping, bool) {
	return find(name)
}
