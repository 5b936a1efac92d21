// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lint

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"codeberg.org/forumlang/langcat/catalog"
)

// compare reports how lang differs from base, domain by domain.
func compare(set *catalog.Set, base, lang string) []Finding {
	var findings []Finding

	for _, domain := range set.Domains(base) {
		ref, _ := set.Catalog(base, domain)

		c, ok := set.Catalog(lang, domain)
		if !ok {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Check:    CheckMissing,
				Language: lang,
				Domain:   domain,
				Message:  "catalog missing, " + base + " has one",
			})

			continue
		}

		for _, key := range ref.Keys() {
			want, _ := ref.Lookup(key)

			got, ok := c.Lookup(key)
			if !ok {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Check:    CheckMissing,
					Language: lang,
					Domain:   domain,
					Key:      key,
					Message:  "not translated",
				})

				continue
			}

			findings = append(findings, comparePlaceholders(lang, domain, key, want, got)...)

			if got.Raw() == want.Raw() && hasLetters(got.Raw()) {
				findings = append(findings, Finding{
					Severity: SeverityInfo,
					Check:    CheckUntranslated,
					Language: lang,
					Domain:   domain,
					Key:      key,
					Message:  "identical to " + base,
				})
			}
		}

		for _, key := range c.Keys() {
			if _, ok := ref.Lookup(key); !ok {
				findings = append(findings, Finding{
					Severity: SeverityInfo,
					Check:    CheckExtra,
					Language: lang,
					Domain:   domain,
					Key:      key,
					Message:  "not present in " + base,
				})
			}
		}
	}

	return findings
}

// comparePlaceholders flags placeholders a translation introduces, which
// callers written against the base language will not supply, and those
// it drops.
func comparePlaceholders(lang, domain, key string, want, got catalog.Template) []Finding {
	wantSet := placeholderSet(want)
	gotSet := placeholderSet(got)

	var findings []Finding

	for _, p := range sortedKeys(gotSet) {
		if _, ok := wantSet[p]; !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    CheckPlaceholders,
				Language: lang,
				Domain:   domain,
				Key:      key,
				Message:  "unexpected placeholder " + p,
			})
		}
	}

	for _, p := range sortedKeys(wantSet) {
		if _, ok := gotSet[p]; !ok {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Check:    CheckPlaceholders,
				Language: lang,
				Domain:   domain,
				Key:      key,
				Message:  "placeholder " + p + " dropped",
			})
		}
	}

	return findings
}

func placeholderSet(t catalog.Template) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range t.Placeholders() {
		out[p.String()] = struct{}{}
	}

	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

func hasLetters(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}

// checkMarkup looks at the HTML inside every template of c.
func checkMarkup(c *catalog.Catalog, policy *bluemonday.Policy) []Finding {
	var findings []Finding

	id := c.ID()

	for _, key := range c.Keys() {
		t, _ := c.Lookup(key)

		raw := t.Raw()
		if !strings.Contains(raw, "<") {
			continue
		}

		for _, msg := range unbalanced(raw) {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Check:    CheckHTML,
				Language: id.Language,
				Domain:   id.Domain,
				Key:      key,
				Message:  msg,
			})
		}

		for _, item := range stripped(raw, policy) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    CheckMarkup,
				Language: id.Language,
				Domain:   id.Domain,
				Key:      key,
				Message:  "policy strips " + item,
			})
		}
	}

	return findings
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// unbalanced returns a message for every end tag without a matching start
// tag and every start tag left open.
func unbalanced(raw string) []string {
	var (
		msgs []string
		open []string
	)

	z := html.NewTokenizer(strings.NewReader(raw))

	for {
		switch z.Next() {
		case html.ErrorToken:
			for i := len(open) - 1; i >= 0; i-- {
				msgs = append(msgs, fmt.Sprintf("<%s> is never closed", open[i]))
			}

			return msgs
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)

			i := slices.Index(open, tag)
			if i < 0 {
				msgs = append(msgs, fmt.Sprintf("</%s> has no start tag", tag))

				continue
			}

			// Tags opened after this one are closed implicitly.
			for j := len(open) - 1; j > i; j-- {
				msgs = append(msgs, fmt.Sprintf("<%s> is never closed", open[j]))
			}

			open = open[:i]
		}
	}
}

// stripped lists the elements and attributes of raw that do not survive
// policy, as "<tag>" and "tag@attr".
func stripped(raw string, policy *bluemonday.Policy) []string {
	before := markupItems(raw)
	after := markupItems(policy.Sanitize(raw))

	var out []string

	for _, item := range sortedCounts(before) {
		if after[item] < before[item] {
			out = append(out, item)
		}
	}

	return out
}

func markupItems(s string) map[string]int {
	items := make(map[string]int)

	z := html.NewTokenizer(strings.NewReader(s))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return items
		}

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, more := z.TagName()
		tag := string(name)
		items["<"+tag+">"]++

		for more {
			var attr []byte

			attr, _, more = z.TagAttr()
			items[tag+"@"+string(attr)]++
		}
	}
}

func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
