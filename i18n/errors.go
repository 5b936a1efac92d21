// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogNotFound is returned when no catalog is loaded for the
	// requested language and domain.
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrKeyNotFound is returned when the catalog has no template for the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMissingParameter is returned when a placeholder of the template
	// has no value.
	ErrMissingParameter = errors.New("missing parameter")
)

// Error describes a failed resolution. Err is one of [ErrCatalogNotFound],
// [ErrKeyNotFound] or [ErrMissingParameter], so callers can use errors.Is.
type Error struct {
	Err      error
	Language string
	Domain   string
	Key      string

	// Placeholder is the unsatisfied placeholder as written in templates,
	// such as "{REALNAME}" or "%2$s". Only set with ErrMissingParameter.
	Placeholder string
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, ErrCatalogNotFound):
		return fmt.Sprintf("i18n: %v: %s.%s", e.Err, e.Domain, e.Language)
	case errors.Is(e.Err, ErrMissingParameter):
		return fmt.Sprintf("i18n: %v %s for %s.%s: %s", e.Err, e.Placeholder, e.Domain, e.Language, e.Key)
	default:
		return fmt.Sprintf("i18n: %v: %s.%s: %s", e.Err, e.Domain, e.Language, e.Key)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns a short machine-readable name for the resolution failure
// behind err, or "" when err is not one.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrCatalogNotFound):
		return "catalog_not_found"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrMissingParameter):
		return "missing_parameter"
	}

	return ""
}
