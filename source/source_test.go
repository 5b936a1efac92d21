// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/catalog"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)

	defer enc.Close()

	return enc.EncodeAll([]byte(s), nil)
}

func TestParseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		ok   bool
		want File
	}{
		{
			path: "Errors.french-utf8.php",
			ok:   true,
			want: File{Path: "Errors.french-utf8.php", ID: catalog.ID{Language: "french-utf8", Domain: "Errors"}, Format: FormatPHP},
		},
		{
			path: "dir/EmailTemplates.english.yml.zst",
			ok:   true,
			want: File{
				Path:        "dir/EmailTemplates.english.yml.zst",
				ID:          catalog.ID{Language: "english", Domain: "EmailTemplates"},
				Format:      FormatYAML,
				Compression: CompressionZstd,
			},
		},
		{
			path: "index.english.po.gz",
			ok:   true,
			want: File{Path: "index.english.po.gz", ID: catalog.ID{Language: "english", Domain: "index"}, Format: FormatPO, Compression: CompressionGzip},
		},
		{path: "README.md"},
		{path: "Errors.php"},
		{path: "Errors.en.gb.php"},
		{path: ".english.php"},
		{path: "Errors.english.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseName(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"lang/Errors.english.php": {Data: []byte(
			"<?php\n$txt['no_access'] = 'You are not allowed to access this section';\n")},
		"lang/Errors.french.php": {Data: []byte(
			"<?php\n$txt['no_access'] = 'Vous n\\'\xeates pas autoris\xe9 \xe0 acc\xe9der \xe0 cette section';\n")},
		"lang/Errors.french-utf8.php.gz": {Data: gzipped(t,
			"<?php\n$txt['no_access'] = 'Vous n\\'êtes pas autorisé à accéder à cette section';\n")},
		"lang/mail/EmailTemplates.english.yaml": {Data: []byte(
			"admin_notify:\n  subject: A new member has joined\n  body: |-\n    {USERNAME} has just signed up.\n\n    {REGARDS}\n")},
		"lang/index.english.toml": {Data: []byte(
			"board_index = \"Board index\"\n\n[stats]\nposts = \"%1$d posts\"\n")},
		"lang/index.french-utf8.yaml.zst": {Data: zstded(t, "board_index: Accueil du forum\n")},
		"lang/Profile.english.json": {Data: []byte(
			`{"profile": {"title": "Profile of %1$s", "hidden": true}, "notes": ["first", "second"]}`)},
		"lang/Help.english.po": {Data: []byte(
			"msgid \"\"\nmsgstr \"\"\n\"Content-Type: text/plain; charset=UTF-8\\n\"\n\n" +
				"msgid \"help_title\"\nmsgstr \"Help for {FORUMNAME}\"\n\n" +
				"msgid \"untranslated\"\nmsgstr \"\"\n")},
		"lang/README.md": {Data: []byte("# not a catalog")},
	}

	set, err := LoadFS(context.Background(), fsys, "lang", Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"english", "french", "french-utf8"}, set.Languages())
	assert.Equal(t, []string{"EmailTemplates", "Errors", "Help", "Profile", "index"}, set.Domains("english"))

	lookup := func(lang, domain, key string) string {
		t.Helper()

		tmpl, catalogFound, keyFound := set.Lookup(lang, domain, key)
		require.True(t, catalogFound, "%s.%s", domain, lang)
		require.True(t, keyFound, "%s.%s: %s", domain, lang, key)

		return tmpl.Raw()
	}

	french := lookup("french", "Errors", "no_access")
	assert.Equal(t, "Vous n'êtes pas autorisé à accéder à cette section", french)
	assert.Equal(t, french, lookup("french-utf8", "Errors", "no_access"))

	assert.Equal(t, "A new member has joined", lookup("english", "EmailTemplates", "admin_notify_subject"))
	assert.Equal(t, "{USERNAME} has just signed up.\n\n{REGARDS}", lookup("english", "EmailTemplates", "admin_notify_body"))
	assert.Equal(t, "%1$d posts", lookup("english", "index", "stats_posts"))
	assert.Equal(t, "Accueil du forum", lookup("french-utf8", "index", "board_index"))
	assert.Equal(t, "Profile of %1$s", lookup("english", "Profile", "profile_title"))
	assert.Equal(t, "1", lookup("english", "Profile", "profile_hidden"))
	assert.Equal(t, "second", lookup("english", "Profile", "notes_1"))
	assert.Equal(t, "Help for {FORUMNAME}", lookup("english", "Help", "help_title"))

	_, _, keyFound := set.Lookup("english", "Help", "untranslated")
	assert.False(t, keyFound)
}

func TestLoadFSDuplicateKey(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"Errors.english.php":  {Data: []byte("<?php $txt['no_access'] = 'A';")},
		"Errors.english.yaml": {Data: []byte("no_access: B\n")},
	}

	_, err := LoadFS(context.Background(), fsys, ".", Options{})
	require.ErrorIs(t, err, catalog.ErrDuplicateKey)
}

func TestLoadFSErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fsys fstest.MapFS
		opts Options
		want string
	}{
		{
			name: "syntax error names the file",
			fsys: fstest.MapFS{"Errors.english.php": {Data: []byte("<?php $txt['a'] = ;")}},
			want: "Errors.english.php",
		},
		{
			name: "bad template names the key",
			fsys: fstest.MapFS{"Errors.english.yaml": {Data: []byte("bad: \"%0$s\"\n")}},
			want: `key "bad"`,
		},
		{
			name: "unknown charset",
			fsys: fstest.MapFS{"Errors.french.php": {Data: []byte("<?php $txt['a'] = '\xe9';")}},
			opts: Options{Charsets: map[string]string{"french": "no-such-charset"}},
			want: "unknown charset",
		},
		{
			name: "corrupt gzip",
			fsys: fstest.MapFS{"Errors.english.php.gz": {Data: []byte("not gzip")}},
			want: "gzip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := LoadFS(context.Background(), tt.fsys, ".", tt.opts)
			require.Error(t, err)
			assert.Nil(t, set)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFSCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsys := fstest.MapFS{"Errors.english.yaml": {Data: []byte("a: b\n")}}

	_, err := LoadFS(ctx, fsys, ".", Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCharsetOverride(t *testing.T) {
	t.Parallel()

	// 0x80 is the euro sign in windows-1252 and a control code in ISO-8859-1.
	f, _ := ParseName("index.french.yaml")

	got, err := Decode(f, []byte("price: \"10 \x80\"\n"), Options{Charsets: map[string]string{"french": "windows-1252"}})
	require.NoError(t, err)
	assert.Equal(t, "10 €", got["price"])
}

func TestEncode(t *testing.T) {
	t.Parallel()

	entries := map[string]string{
		"b_body":   "Hello {USERNAME},\n\n{REGARDS}",
		"a_simple": "That email address (%1$s) is in use.",
	}

	out, err := Encode(FormatYAML, entries)
	require.NoError(t, err)
	assert.Less(t, bytes.Index(out, []byte("a_simple")), bytes.Index(out, []byte("b_body")))

	back, err := Parse(FormatYAML, out)
	require.NoError(t, err)
	assert.Equal(t, entries, back)

	out, err = Encode(FormatTOML, entries)
	require.NoError(t, err)

	back, err = Parse(FormatTOML, out)
	require.NoError(t, err)
	assert.Equal(t, entries, back)

	_, err = Encode(FormatPHP, entries)
	assert.Error(t, err)
}
