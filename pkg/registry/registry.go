// Package registry resolves canonical application names to human readable
// display names.
package registry

import (
	"fmt"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/go-ps"

	"github.com/kisy/appmole/pkg/identity"
)

const DefaultCacheSize = 50

// ProcessLister lists running processes. ps.Processes satisfies it.
type ProcessLister func() ([]ps.Process, error)

type Registry struct {
	cache *lru.Cache[string, string]
	list  ProcessLister
}

func New(size int, list ProcessLister) (*Registry, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if list == nil {
		list = ps.Processes
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create name cache: %w", err)
	}
	return &Registry{cache: cache, list: list}, nil
}

// DisplayName resolves name, preferring the mapping table, then a running
// executable whose name matches. Only mapped apps have a display name that
// differs from their canonical name, so the pid plays no part in the lookup.
func (r *Registry) DisplayName(name string, pid *int32) string {
	if v, ok := r.cache.Get(name); ok {
		return v
	}

	v := r.resolve(name)
	r.cache.Add(name, v)
	return v
}

func (r *Registry) resolve(name string) string {
	if m, ok := identity.Lookup(name); ok {
		return m.DisplayName
	}

	procs, err := r.list()
	if err != nil {
		return name
	}

	exes := make([]string, 0, len(procs))
	for _, proc := range procs {
		if proc == nil {
			continue
		}
		exes = append(exes, proc.Executable())
	}

	if exe, ok := MatchName(name, exes); ok {
		return exe
	}
	return name
}

// MinPartialMatch is the shortest name, in runes, that may take part in a
// substring match.
const MinPartialMatch = 4

// MatchName picks a candidate for name. Every candidate is first checked for
// a case-insensitive exact match. Failing that, the first candidate that
// contains name wins, then the first one contained in name. Names shorter
// than MinPartialMatch never match partially. Helper and system processes
// are never chosen.
func MatchName(name string, candidates []string) (string, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return "", false
	}

	usable := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if k := identity.Classify(c).Kind; k == identity.HelperMember || k == identity.Ignore {
			continue
		}
		if strings.ToLower(c) == lower {
			return c, true
		}
		usable = append(usable, c)
	}

	if utf8.RuneCountInString(lower) >= MinPartialMatch {
		for _, c := range usable {
			if strings.Contains(strings.ToLower(c), lower) {
				return c, true
			}
		}
	}
	for _, c := range usable {
		cl := strings.ToLower(c)
		if utf8.RuneCountInString(cl) >= MinPartialMatch && strings.Contains(lower, cl) {
			return c, true
		}
	}
	return "", false
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
