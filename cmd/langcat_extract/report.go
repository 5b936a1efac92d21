// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"codeberg.org/forumlang/langcat/catalog"
)

func sortedKeys(refs map[key][]ref) []key {
	keys := make([]key, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b key) int {
		return cmp.Or(cmp.Compare(a.domain, b.domain), cmp.Compare(a.key, b.key))
	})

	return keys
}

// formatRefs sorts rs and returns them as file:line, without duplicates.
func formatRefs(rs []ref) []string {
	slices.SortFunc(rs, func(a, b ref) int {
		return cmp.Or(cmp.Compare(a.file, b.file), cmp.Compare(a.line, b.line))
	})

	rs = slices.Compact(rs)

	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = fmt.Sprintf("%s:%d", r.file, r.line)
	}

	return out
}

// writeReport emits one line per referenced key: domain, key and the
// places it is used.
func writeReport(b *strings.Builder, refs map[key][]ref) {
	for _, k := range sortedKeys(refs) {
		fmt.Fprintf(b, "%s\t%s\t%s\n", k.domain, k.key, strings.Join(formatRefs(refs[k]), " "))
	}
}

// missingKeys returns the referenced keys that language does not define.
func missingKeys(refs map[key][]ref, set *catalog.Set, language string) []key {
	var missing []key

	for _, k := range sortedKeys(refs) {
		if _, _, found := set.Lookup(language, k.domain, k.key); !found {
			missing = append(missing, k)
		}
	}

	return missing
}
