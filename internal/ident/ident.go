// Package ident implements Cflat's process-wide identifier registry.
//
// Every name the tokenizer, parser, and evaluator touch — variable names,
// type names, namespace segments, function names — is interned once into
// a stable Handle. Handles compare by hash, not by string content, which
// keeps name lookups in the symbol containers and namespace tree
// (internal/runtime) cheap: a map key is a uint32, not a string.
package ident

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Handle is an interned identifier. The zero Handle is invalid; call
// Intern to obtain a usable one. Two handles are Equal iff their hashes
// match, which holds for any name actually seen by the same registry.
type Handle struct {
	name string
	hash uint32
}

// String returns the canonical spelling of the identifier.
func (h Handle) String() string { return h.name }

// Hash returns the 32-bit FNV-1a hash used for equality and map keys.
func (h Handle) Hash() uint32 { return h.hash }

// IsZero reports whether h is the zero Handle (never interned).
func (h Handle) IsZero() bool { return h.name == "" && h.hash == 0 }

// Equal reports whether h and o name the same interned identifier.
func (h Handle) Equal(o Handle) bool { return h.hash == o.hash }

// Registry is a process-wide arena mapping hash to canonical string
// storage. Create one with NewRegistry (the zero Registry has no map to
// store into); Global is the instance the package-level Intern uses.
type Registry struct {
	mu      sync.RWMutex
	strings map[uint32]string
}

// Global is the registry used across one process. Every caller in this
// module interns through the package-level Intern, so all environments
// and scripts in a process share this one registry: interned names
// never need to be destroyed during the process's lifetime (§3).
var Global = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strings: make(map[uint32]string)}
}

// Intern inserts name into the registry on first sight and returns a
// stable Handle. Subsequent calls with the same bytes return a Handle
// with an identical hash; the registry never resolves a hash collision,
// trusting FNV-1a's astronomically low collision odds over the
// identifier sets Cflat scripts actually use (§4.A).
//
// name is first normalized to NFC: Unicode identifiers accepted by the
// tokenizer (§4.D) can reach here in more than one equivalent composed
// form (e.g. a precomposed accented letter vs. the same letter plus a
// combining mark), and those must hash and compare identical rather
// than silently naming two different bindings.
func (r *Registry) Intern(name string) Handle {
	name = norm.NFC.String(name)
	h := fnv1a32(name)

	r.mu.RLock()
	existing, ok := r.strings[h]
	r.mu.RUnlock()
	if ok {
		return Handle{name: existing, hash: h}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.strings[h]; ok {
		return Handle{name: existing, hash: h}
	}
	r.strings[h] = name
	return Handle{name: name, hash: h}
}

// Intern interns name against the Global registry.
func Intern(name string) Handle { return Global.Intern(name) }

const (
	fnvOffsetBasis32 uint32 = 2166136261
	fnvPrime32       uint32 = 16777619
)

// fnv1a32 is the 32-bit FNV-1a hash specified by §4.A. Implementers may
// substitute any stable non-cryptographic hash of equivalent strength;
// this port keeps FNV-1a because it's branch-free and allocation-free
// over a string's bytes.
func fnv1a32(s string) uint32 {
	h := fnvOffsetBasis32
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// SplitLastScope scans name for the last top-level "::" separator,
// returning the namespace path and the leaf. If name has no "::", ok is
// false and path is empty. Namespace resolution (internal/runtime)
// uses this to split "a::b::c" into path "a::b" and leaf "c" without
// allocating beyond the two result slices.
func SplitLastScope(name string) (path, leaf string, ok bool) {
	idx := lastScopeIndex(name)
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+2:], true
}

// SplitFirstScope scans name for the first top-level "::" separator,
// returning the first segment and the remainder. Used when resolving a
// qualified name segment by segment down the namespace tree.
func SplitFirstScope(name string) (head, rest string, ok bool) {
	idx := firstScopeIndex(name)
	if idx < 0 {
		return name, "", false
	}
	return name[:idx], name[idx+2:], true
}

func lastScopeIndex(s string) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == ':' && s[i+1] == ':' {
			return i
		}
	}
	return -1
}

func firstScopeIndex(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && s[i+1] == ':' {
			return i
		}
	}
	return -1
}
