// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/i18n"
)

func TestMessageRender(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{DefaultLanguage: "english", Context: forumContext})

	msg := i18n.Message{Domain: "Profile", Key: "profile_of_username", Params: i18n.Args{"Alice"}}

	var sb strings.Builder

	ctx := i18n.WithResolver(context.Background(), r)
	require.NoError(t, msg.Render(ctx, &sb))
	assert.Equal(t, "Profile of Alice", sb.String())

	ctx = i18n.WithLanguage(ctx, "french-utf8")
	assert.Equal(t, "Profil de Alice", msg.Tr(ctx))

	missing := i18n.Message{Domain: "Profile", Key: "karma_label"}
	assert.Equal(t, "⟦Profile.karma_label⟧", missing.Tr(ctx))

	assert.Equal(t, "⟦Profile.profile_of_username⟧", msg.Tr(context.Background()))
}

func TestUserError(t *testing.T) {
	t.Parallel()

	r := newResolver(t, i18n.Options{DefaultLanguage: "english"})
	ctx := i18n.WithLanguage(i18n.WithResolver(context.Background(), r), "french")

	err := i18n.NewUserError(ctx, "Errors", "file_too_big", i18n.Args{512})
	assert.Equal(t, "Votre fichier est trop gros. La taille maximale autorisée pour les fichiers joints est de 512 Ko.", err.Error())
	assert.Equal(t, "file_too_big", err.Key)
}

func TestKV(t *testing.T) {
	t.Parallel()

	assert.Equal(t, i18n.Vars{"USERNAME": "bob", "COUNT": 2}, i18n.KV("USERNAME", "bob", "COUNT", 2))
	assert.Panics(t, func() { i18n.KV("USERNAME") })
	assert.Panics(t, func() { i18n.KV(1, 2) })
}
