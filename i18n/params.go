// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

// Params supplies placeholder values to [Resolver.Resolve].
// A nil Params is an empty parameter set.
type Params interface {
	// Positional returns the n-th value, counting from 1.
	Positional(n int) (any, bool)

	// Named returns the value for a {NAME} placeholder.
	Named(name string) (any, bool)
}

// Args is an ordered list of values for positional placeholders.
type Args []any

func (a Args) Positional(n int) (any, bool) {
	if n < 1 || n > len(a) {
		return nil, false
	}

	return a[n-1], true
}

func (Args) Named(string) (any, bool) {
	return nil, false
}

// Vars maps placeholder names to values.
type Vars map[string]any

func (Vars) Positional(int) (any, bool) {
	return nil, false
}

func (v Vars) Named(name string) (any, bool) {
	val, ok := v[name]

	return val, ok
}

// Values carries both kinds of values, for templates that mix the two
// syntaxes.
type Values struct {
	Args Args
	Vars Vars
}

func (v Values) Positional(n int) (any, bool) {
	return v.Args.Positional(n)
}

func (v Values) Named(name string) (any, bool) {
	return v.Vars.Named(name)
}

// KV builds Vars from alternating key, value pairs.
// Panics on programmer error.
func KV(kv ...any) Vars {
	if len(kv)%2 != 0 {
		panic("i18n.KV: odd number of arguments, want key, value pairs")
	}

	m := make(Vars, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("i18n.KV: key must be string")
		}

		m[k] = kv[i+1]
	}

	return m
}
