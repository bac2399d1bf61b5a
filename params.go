package hashsig

import "sort"

// Profile names a vetted (depth_top, depth_bot) pair, the way a named
// parameter set bundles a whole scheme configuration under one label.
// depth_top bounds the signer's total lifetime (2^depth_top
// signatures); depth_bot bounds the inner-leaf collision probability
// for a given lifetime.
type Profile struct {
	Name     string
	DepthTop uint8
	DepthBot uint8
}

var registry = map[string]Profile{
	"small":   {Name: "small", DepthTop: 8, DepthBot: 4},
	"default": {Name: "default", DepthTop: 16, DepthBot: 8},
	"large":   {Name: "large", DepthTop: 20, DepthBot: 10},
}

// ProfileByName looks up a named profile. ok is false for an unknown
// name.
func ProfileByName(name string) (Profile, bool) {
	p, ok := registry[name]
	return p, ok
}

// ProfileNames lists every registered profile name, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
