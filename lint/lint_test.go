// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lint

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/catalog"
	"codeberg.org/forumlang/langcat/languages"
	"codeberg.org/forumlang/langcat/source"
)

var fixture = fstest.MapFS{
	"lang/Errors.english.yaml": {Data: []byte(
		"greeting: Hello {NAME}\n" +
			"bye: Bye\n" +
			"link: <a href=\"{SCRIPTURL}\">home</a>\n" +
			"count: \"%1$d posts\"\n")},
	"lang/Errors.french.yaml": {Data: []byte(
		"greeting: Bonjour {USER}\n" +
			"link: <a href=\"{SCRIPTURL}\" onclick=\"steal()\">accueil</a>\n" +
			"count: \"%1$d posts\"\n" +
			"bold: <b>ouvert\n" +
			"broken: \"%0$s\"\n")},
	"lang/Profile.english.yaml": {Data: []byte("title: Profile\n")},
	"lang/Help.french.json":     {Data: []byte("{not json")},
}

func only(findings []Finding, check string) []Finding {
	var out []Finding

	for _, f := range findings {
		if f.Check == check {
			out = append(out, f)
		}
	}

	return out
}

func loadFixture(t *testing.T) (*catalog.Set, []Finding) {
	t.Helper()

	set, findings, err := Load(context.Background(), fixture, "lang", source.Options{})
	require.NoError(t, err)

	return set, findings
}

func TestLoad(t *testing.T) {
	t.Parallel()

	set, findings := loadFixture(t)

	require.Len(t, findings, 2)
	assert.Equal(t, Finding{
		Severity: SeverityError,
		Check:    CheckParse,
		Language: "french",
		Domain:   "Errors",
		Key:      "broken",
		Message:  findings[0].Message,
	}, findings[0])
	assert.Equal(t, CheckDecode, findings[1].Check)
	assert.Equal(t, "Help", findings[1].Domain)

	// The rest of the file still loads.
	_, catalogFound, keyFound := set.Lookup("french", "Errors", "bold")
	assert.True(t, catalogFound)
	assert.True(t, keyFound)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	set, _ := loadFixture(t)

	findings, err := Check(set, Options{Base: "english"})
	require.NoError(t, err)

	assert.Equal(t, []Finding{
		{SeverityWarning, CheckMissing, "french", "Errors", "bye", "not translated"},
		{SeverityWarning, CheckMissing, "french", "Profile", "", "catalog missing, english has one"},
	}, only(findings, CheckMissing))

	assert.Equal(t, []Finding{
		{SeverityError, CheckPlaceholders, "french", "Errors", "greeting", "unexpected placeholder {USER}"},
		{SeverityWarning, CheckPlaceholders, "french", "Errors", "greeting", "placeholder {NAME} dropped"},
	}, only(findings, CheckPlaceholders))

	assert.Equal(t, []Finding{
		{SeverityInfo, CheckUntranslated, "french", "Errors", "count", "identical to english"},
	}, only(findings, CheckUntranslated))

	assert.Equal(t, []Finding{
		{SeverityInfo, CheckExtra, "french", "Errors", "bold", "not present in english"},
	}, only(findings, CheckExtra), "keys that failed to parse are not loaded")

	assert.Equal(t, []Finding{
		{SeverityWarning, CheckHTML, "french", "Errors", "bold", "<b> is never closed"},
	}, only(findings, CheckHTML))

	assert.Contains(t, only(findings, CheckMarkup),
		Finding{SeverityError, CheckMarkup, "french", "Errors", "link", "policy strips a@onclick"})

	assert.Equal(t, SeverityError, Worst(findings))
	assert.Equal(t, SeverityError, findings[0].Severity)
}

func TestCheckUnknownBase(t *testing.T) {
	t.Parallel()

	set, _ := loadFixture(t)

	_, err := Check(set, Options{Base: "klingon"})
	require.ErrorIs(t, err, errUnknownBase)
}

func TestUnbalanced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "plain text", want: nil},
		{raw: "<strong>bold</strong><br />line<br>", want: nil},
		{raw: "<a href=\"{SCRIPTURL}?action=login\">log in</a>", want: nil},
		{raw: "<b>open", want: []string{"<b> is never closed"}},
		{raw: "closed</i>", want: []string{"</i> has no start tag"}},
		{raw: "<div><span>x</div>", want: []string{"<span> is never closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, unbalanced(tt.raw))
		})
	}
}

func TestStripped(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()

	assert.Empty(t, stripped(`<strong>ok</strong> <a class="bbc_link" href="https://example.org" target="_blank">x</a>`, policy))
	assert.Equal(t, []string{"<script>"}, stripped(`hi<script>alert(1)</script>`, policy))
	assert.Equal(t, []string{"a@onclick"}, stripped(`<a href="https://example.org" onclick="x()">x</a>`, policy))
}

func TestEmbeddedCatalogsHaveNoErrors(t *testing.T) {
	t.Parallel()

	set, findings, err := Load(context.Background(), languages.FS, ".", source.Options{Charsets: languages.Charsets})
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = Check(set, Options{Base: "english"})
	require.NoError(t, err)

	for _, f := range findings {
		assert.NotEqual(t, SeverityError, f.Severity, f.String())
	}
}
