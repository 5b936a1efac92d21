// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// utf8Suffix marks the UTF-8 variant of a legacy language pack.
const utf8Suffix = "-utf8"

var (
	namesOnce sync.Once

	// tagsByName maps lower-case English language names, such as "french",
	// to their base language tag.
	tagsByName map[string]language.Tag
)

func loadNames() {
	namer := display.Languages(language.English)
	bases := language.Supported.BaseLanguages()

	tagsByName = make(map[string]language.Tag, len(bases))

	for _, b := range bases {
		name := strings.ToLower(namer.Name(b))
		if name == "" {
			continue
		}

		if _, taken := tagsByName[name]; !taken {
			tagsByName[name] = language.Make(b.String())
		}
	}
}

// TagFor maps a catalog language id to a BCP 47 tag.
//
// Ids are English language names as used by forum language packs, so
// "french" and "french-utf8" both map to fr, and "english_british" maps to
// en. Ids that are already valid tags, such as "pt-BR", are parsed as such.
// Unknown ids map to [language.Und].
func TagFor(id string) language.Tag {
	namesOnce.Do(loadNames)

	name := strings.ToLower(strings.TrimSuffix(id, utf8Suffix))

	if t, ok := tagsByName[strings.ReplaceAll(name, "_", " ")]; ok {
		return t
	}

	if i := strings.IndexAny(name, "_-"); i > 0 {
		if t, ok := tagsByName[name[:i]]; ok {
			return t
		}
	}

	if t, err := language.Parse(id); err == nil {
		return t
	}

	return language.Und
}

// languageMatcher matches preferences against the languages of one
// catalog generation.
type languageMatcher struct {
	generation uint64
	ids        []string
	matcher    language.Matcher
}

// newLanguageMatcher orders ids with def first so that it becomes the
// fallback. Among ids that share a tag, UTF-8 variants are preferred.
func newLanguageMatcher(generation uint64, ids []string, def string) *languageMatcher {
	if len(ids) == 0 {
		return &languageMatcher{generation: generation}
	}

	ordered := slices.Clone(ids)

	slices.SortStableFunc(ordered, func(a, b string) int {
		switch {
		case a == def:
			return -1
		case b == def:
			return 1
		}

		au, bu := strings.HasSuffix(a, utf8Suffix), strings.HasSuffix(b, utf8Suffix)

		switch {
		case au && !bu:
			return -1
		case bu && !au:
			return 1
		}

		return strings.Compare(a, b)
	})

	tags := make([]language.Tag, len(ordered))
	for i, id := range ordered {
		tags[i] = TagFor(id)
	}

	return &languageMatcher{
		generation: generation,
		ids:        ordered,
		matcher:    language.NewMatcher(tags),
	}
}

func (m *languageMatcher) match(preferred ...string) string {
	if len(m.ids) == 0 {
		return ""
	}

	for _, p := range preferred {
		if slices.Contains(m.ids, p) {
			return p
		}

		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}

		if _, index, conf := m.matcher.Match(tags...); conf != language.No {
			return m.ids[index]
		}
	}

	return m.ids[0]
}
