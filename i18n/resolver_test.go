// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/catalog"
	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/languages"
	"codeberg.org/forumlang/langcat/source"
)

var forumContext = i18n.Vars{
	"FORUMNAME":      "My Community",
	"SCRIPTURL":      "https://forum.example.org/index.php",
	"BOARDURL":       "https://forum.example.org",
	"REGARDS":        "Regards,\nThe My Community Team.",
	"WEBMASTEREMAIL": "admin@example.org",
}

func loadEmbedded(ctx context.Context) (*catalog.Set, error) {
	return source.LoadFS(ctx, languages.FS, ".", source.Options{Charsets: languages.Charsets})
}

func newResolver(t *testing.T, opts i18n.Options) *i18n.Resolver {
	t.Helper()

	store, err := i18n.Setup(context.Background(), loadEmbedded)
	require.NoError(t, err)

	return i18n.New(store, opts)
}

func TestResolveScenarios(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{})

	tests := []struct {
		name     string
		language string
		domain   string
		key      string
		params   i18n.Params
		want     string
	}{
		{
			name:     "no placeholders ignores parameters",
			language: "english", domain: "Errors", key: "no_access",
			params: i18n.Args{},
			want:   "You are not allowed to access this section",
		},
		{
			name:     "email in use",
			language: "english", domain: "Errors", key: "email_in_use",
			params: i18n.Args{"bob@example.com"},
			want: "That email address (bob@example.com) is already being used by a registered member. " +
				"If you feel this is a mistake, go to the login page and use the password reminder with that address.",
		},
		{
			name:     "static subject",
			language: "english", domain: "EmailTemplates", key: "admin_notify_subject",
			params: i18n.Vars{},
			want:   "A new member has joined",
		},
		{
			name:     "ban trigger",
			language: "english", domain: "Errors", key: "ban_trigger_already_exists",
			params: i18n.Args{"192.168.0.1", "MyBan"},
			want:   "This ban trigger (192.168.0.1) already exists in MyBan.",
		},
		{
			name:     "nil parameters",
			language: "english", domain: "Errors", key: "no_access",
			want: "You are not allowed to access this section",
		},
		{
			name:     "days ago truncates to integer",
			language: "english", domain: "index", key: "draft_days_ago",
			params: i18n.Args{"Alice", 5.9},
			want:   "Alice, 5 days ago",
		},
		{
			name:     "days ago in french",
			language: "french-utf8", domain: "index", key: "draft_days_ago",
			params: i18n.Args{"Alice", 5},
			want:   "Alice, il y a 5 jours",
		},
		{
			name:     "latin-1 pack is served as utf-8",
			language: "french", domain: "Errors", key: "no_access",
			want: "Vous n'êtes pas autorisé à accéder à cette section",
		},
		{
			name:     "untranslated text kept",
			language: "french", domain: "Errors", key: "no_boards",
			want: "Sorry, there are no boards available to you at this time.",
		},
		{
			name:     "escaped percent",
			language: "english", domain: "index", key: "percent_done",
			params: i18n.Args{"42.7"},
			want:   "42% done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.language, tt.domain, tt.key, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{Context: i18n.Vars{"FORUMNAME": "My Community"}})

	tests := []struct {
		name        string
		language    string
		domain      string
		key         string
		params      i18n.Params
		want        error
		kind        string
		placeholder string
	}{
		{
			name:     "unknown language",
			language: "klingon", domain: "Errors", key: "no_access",
			want: i18n.ErrCatalogNotFound, kind: "catalog_not_found",
		},
		{
			name:     "language ids are case-sensitive",
			language: "English", domain: "Errors", key: "no_access",
			want: i18n.ErrCatalogNotFound, kind: "catalog_not_found",
		},
		{
			name:     "unknown domain",
			language: "english", domain: "Nope", key: "no_access",
			want: i18n.ErrCatalogNotFound, kind: "catalog_not_found",
		},
		{
			name:     "unknown key",
			language: "english", domain: "Errors", key: "does_not_exist",
			want: i18n.ErrKeyNotFound, kind: "key_not_found",
		},
		{
			name:     "second positional missing",
			language: "english", domain: "Errors", key: "ban_trigger_already_exists",
			params: i18n.Args{"192.168.0.1"},
			want:   i18n.ErrMissingParameter, kind: "missing_parameter", placeholder: "%2$s",
		},
		{
			name:     "named value missing",
			language: "english", domain: "EmailTemplates", key: "emails_resend_activate_message_body",
			params: i18n.Vars{"USERNAME": "bob"},
			want:   i18n.ErrMissingParameter, kind: "missing_parameter", placeholder: "{REALNAME}",
		},
		{
			name:     "named values do not satisfy positional placeholders",
			language: "english", domain: "Errors", key: "email_in_use",
			params: i18n.Vars{"1": "bob@example.com"},
			want:   i18n.ErrMissingParameter, kind: "missing_parameter", placeholder: "%1$s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.language, tt.domain, tt.key, tt.params)
			assert.Empty(t, got)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, i18n.Kind(err))

			var rerr *i18n.Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.language, rerr.Language)
			assert.Equal(t, tt.domain, rerr.Domain)
			assert.Equal(t, tt.key, rerr.Key)
			assert.Equal(t, tt.placeholder, rerr.Placeholder)
		})
	}
}

func TestResolveContext(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{Context: forumContext})

	got, err := r.Resolve("english", "Errors", "login_to_post", nil)
	require.NoError(t, err)
	assert.Equal(t,
		`To post you must be logged in. If you don't have an account yet, please `+
			`<a href="https://forum.example.org/index.php?action=register">register</a>.`,
		got)

	got, err = r.Resolve("english", "index", "topic_started_by", i18n.Args{7, "Alice"})
	require.NoError(t, err)
	assert.Equal(t, `Started by <a href="https://forum.example.org/index.php?action=profile;u=7">Alice</a>`, got)

	got, err = r.Resolve("english", "index", "welcome_forum", nil)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to My Community.", got)

	// Call-site values win over the resolver context.
	got, err = r.Resolve("english", "index", "welcome_forum", i18n.KV("FORUMNAME", "Elsewhere"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Elsewhere.", got)

	got, err = r.Resolve("english", "EmailTemplates", "admin_notify_body", i18n.Vars{
		"USERNAME":    "bob",
		"PROFILELINK": "https://forum.example.org/index.php?action=profile;u=2",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"bob has just signed up as a new member of your forum. Click the link below to view their profile.\n"+
			"https://forum.example.org/index.php?action=profile;u=2\n\n"+
			"Regards,\nThe My Community Team.",
		got)

	got, err = r.Resolve("english", "Errors", "attach_max_size", i18n.Values{
		Vars: i18n.Vars{"SETTING_ATTACHMENTSIZELIMIT": 128},
	})
	require.NoError(t, err)
	assert.Equal(t, "Attachments may be at most 128 KB.", got)
}

var leftover = regexp.MustCompile(`\{[A-Z][A-Z0-9_]*\}|%[0-9]+\$`)

// Every template resolves without placeholder syntax once all of its
// placeholders have values.
func TestResolveSubstitutesEverything(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{})

	for _, c := range r.Snapshot().Catalogs() {
		for _, key := range c.Keys() {
			tmpl, _ := c.Lookup(key)

			params := i18n.Values{Vars: i18n.Vars{}}

			for _, p := range tmpl.Placeholders() {
				if p.Named() {
					params.Vars[p.Name] = "v"

					continue
				}

				for len(params.Args) < p.Index {
					params.Args = append(params.Args, 1)
				}
			}

			got, err := r.Resolve(c.ID().Language, c.ID().Domain, key, params)
			require.NoError(t, err, "%s: %s", c.ID(), key)
			assert.False(t, leftover.MatchString(got), "%s: %s: %q", c.ID(), key, got)

			again, _ := r.Resolve(c.ID().Language, c.ID().Domain, key, params)
			assert.Equal(t, got, again)
		}
	}
}

func TestFrenchVariantsResolveIdentically(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{Context: forumContext})

	c, ok := r.Snapshot().Catalog("french", "Errors")
	require.True(t, ok)

	params := i18n.Values{
		Args: i18n.Args{"a", "b"},
		Vars: i18n.Vars{"SETTING_ATTACHMENTSIZELIMIT": 64},
	}

	for _, key := range c.Keys() {
		latin1, err1 := r.Resolve("french", "Errors", key, params)
		utf8, err2 := r.Resolve("french-utf8", "Errors", key, params)

		require.NoError(t, err1, key)
		require.NoError(t, err2, key)
		assert.Equal(t, utf8, latin1, key)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{})

	assert.Equal(t, "You are not allowed to access this section", r.Text("english", "Errors", "no_access", nil))
	assert.Equal(t, "⟦Errors.nope⟧", r.Text("english", "Errors", "nope", nil))
	assert.Equal(t, "⟦Errors.no_access⟧", r.Text("klingon", "Errors", "no_access", nil))
	assert.Equal(t, "⟦Errors.email_in_use⟧", r.Text("english", "Errors", "email_in_use", nil))

	assert.True(t, r.Has("english", "Errors", "no_access"))
	assert.False(t, r.Has("english", "Errors", "nope"))
	assert.False(t, r.Has("klingon", "Errors", "no_access"))
}

func TestResolveDuringSwap(t *testing.T) {
	t.Parallel()

	first := catalog.NewBuilder()
	require.NoError(t, first.Add(catalog.ID{Language: "english", Domain: "index"}, "greeting", "Hello %1$s", "a"))

	second := catalog.NewBuilder()
	require.NoError(t, second.Add(catalog.ID{Language: "english", Domain: "index"}, "greeting", "Hi %1$s", "b"))

	store := i18n.NewStore(nil)
	store.Swap(first.Build())

	r := i18n.New(store, i18n.Options{})
	sets := []*catalog.Set{first.Build(), second.Build()}

	var wg sync.WaitGroup

	for i := range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range 200 {
				store.Swap(sets[(i+j)%2])
			}
		}()
	}

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 200 {
				got, err := r.Resolve("english", "index", "greeting", i18n.Args{"Alice"})
				assert.NoError(t, err)
				assert.Contains(t, []string{"Hello Alice", "Hi Alice"}, got)
			}
		}()
	}

	wg.Wait()
}
