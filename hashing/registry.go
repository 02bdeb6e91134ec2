package hashing

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Default is the hash function used when none is specified
var Default Hasher = Blake2b256{}

var registry = map[string]Hasher{
	NameBlake2b256: Blake2b256{},
	NameSHA256:     SHA256{},
	NameBlake3:     Blake3{},
	NameSM3:        SM3{},
}

// ByName returns registered hasher by its name
func ByName(name string) (Hasher, error) {
	h, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("hash function '%s' not found. Supported: %v", name, Names())
	}
	return h, nil
}

// MustByName is ByName which panics if the name is unknown
func MustByName(name string) Hasher {
	h, err := ByName(name)
	if err != nil {
		panic(err)
	}
	return h
}

// ByMultihashCode returns registered hasher by its multicodec code
func ByMultihashCode(code uint64) (Hasher, error) {
	h, ok := lo.Find(lo.Values(registry), func(h Hasher) bool {
		return h.MultihashCode() == code
	})
	if !ok {
		return nil, fmt.Errorf("no hash function with multihash code 0x%x", code)
	}
	return h, nil
}

// Names returns sorted names of all registered hash functions
func Names() []string {
	ret := lo.Keys(registry)
	sort.Strings(ret)
	return ret
}

// All returns all registered hash functions sorted by name
func All() []Hasher {
	return lo.Map(Names(), func(name string, _ int) Hasher {
		return registry[name]
	})
}
