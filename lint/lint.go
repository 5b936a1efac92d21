// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lint

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/microcosm-cc/bluemonday"

	"codeberg.org/forumlang/langcat/catalog"
	"codeberg.org/forumlang/langcat/source"
)

var errUnknownBase = errors.New("base language has no catalogs")

// Severity orders findings by how much they matter.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Check names.
const (
	CheckDecode       = "decode"
	CheckParse        = "parse"
	CheckDuplicate    = "duplicate"
	CheckMissing      = "missing"
	CheckExtra        = "extra"
	CheckPlaceholders = "placeholders"
	CheckHTML         = "html"
	CheckMarkup       = "markup"
	CheckUntranslated = "untranslated"
)

// Finding is a single problem found in the catalogs.
type Finding struct {
	Severity Severity
	Check    string
	Language string
	Domain   string
	Key      string // empty for file and catalog level findings
	Message  string
}

func (f Finding) String() string {
	where := f.Domain + "." + f.Language
	if f.Key != "" {
		where += ": " + f.Key
	}

	return fmt.Sprintf("%-7s [%s] %s: %s", f.Severity, f.Check, where, f.Message)
}

// Options configure [Check].
type Options struct {
	// Base is the language translations are compared against.
	Base string

	// Policy decides which markup is acceptable. Nil means [DefaultPolicy].
	Policy *bluemonday.Policy
}

// DefaultPolicy returns the HTML policy used for forum text: user
// generated content markup plus class attributes and links opening in a
// new tab.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")

	return p
}

// Load reads every catalog file below dir. Files that cannot be decoded
// and templates that do not parse become findings instead of aborting
// the load; the returned Set holds everything that did load.
func Load(ctx context.Context, fsys fs.FS, dir string, opts source.Options) (*catalog.Set, []Finding, error) {
	var (
		findings []Finding
		b        = catalog.NewBuilder()
	)

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			return nil
		}

		f, ok := source.ParseName(p)
		if !ok {
			return nil
		}

		_, entries, err := source.ReadFile(fsys, p, opts)
		if err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    CheckDecode,
				Language: f.ID.Language,
				Domain:   f.ID.Domain,
				Message:  err.Error(),
			})

			return nil
		}

		if err := b.Declare(f.ID); err != nil {
			return err
		}

		for key, raw := range entries {
			t, err := catalog.Parse(raw)
			if err != nil {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Check:    CheckParse,
					Language: f.ID.Language,
					Domain:   f.ID.Domain,
					Key:      key,
					Message:  err.Error(),
				})

				continue
			}

			if err := b.AddTemplate(f.ID, key, t, p); err != nil {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Check:    CheckDuplicate,
					Language: f.ID.Language,
					Domain:   f.ID.Domain,
					Key:      key,
					Message:  err.Error(),
				})
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk catalog directory: %w", err)
	}

	Sort(findings)

	return b.Build(), findings, nil
}

// Check runs every cross-language and markup check over set.
func Check(set *catalog.Set, opts Options) ([]Finding, error) {
	if len(set.Domains(opts.Base)) == 0 {
		return nil, fmt.Errorf("%w: %q", errUnknownBase, opts.Base)
	}

	policy := opts.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}

	var findings []Finding

	for _, c := range set.Catalogs() {
		findings = append(findings, checkMarkup(c, policy)...)
	}

	for _, lang := range set.Languages() {
		if lang == opts.Base {
			continue
		}

		findings = append(findings, compare(set, opts.Base, lang)...)
	}

	Sort(findings)

	return findings, nil
}

// Sort orders findings by severity, most severe first, then by location.
func Sort(findings []Finding) {
	slices.SortStableFunc(findings, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(b.Severity, a.Severity),
			cmp.Compare(a.Domain, b.Domain),
			cmp.Compare(a.Language, b.Language),
			cmp.Compare(a.Key, b.Key),
			cmp.Compare(a.Check, b.Check),
		)
	})
}

// Worst returns the highest severity among findings, or SeverityInfo when
// there are none.
func Worst(findings []Finding) Severity {
	worst := SeverityInfo
	for _, f := range findings {
		worst = max(worst, f.Severity)
	}

	return worst
}
