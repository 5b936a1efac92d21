// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	errors := ID{Language: "english", Domain: "Errors"}
	frErrors := ID{Language: "french", Domain: "Errors"}

	require.NoError(t, b.Add(errors, "no_access", "You are not allowed to access this section", "Errors.english.php"))
	require.NoError(t, b.Add(frErrors, "no_access", "Vous n'êtes pas autorisé à accéder à cette section", "Errors.french.php"))
	require.NoError(t, b.Declare(ID{Language: "english", Domain: "Empty"}))

	set := b.Build()

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"english", "french"}, set.Languages())
	assert.Equal(t, []string{"Empty", "Errors"}, set.Domains("english"))
	assert.NotZero(t, set.Generation())
	assert.False(t, set.LoadedAt().IsZero())

	tmpl, catalogFound, keyFound := set.Lookup("english", "Errors", "no_access")
	assert.True(t, catalogFound)
	assert.True(t, keyFound)
	assert.Equal(t, "You are not allowed to access this section", tmpl.Raw())

	_, catalogFound, keyFound = set.Lookup("english", "Errors", "missing")
	assert.True(t, catalogFound)
	assert.False(t, keyFound)

	_, catalogFound, _ = set.Lookup("English", "Errors", "no_access")
	assert.False(t, catalogFound, "language ids are case-sensitive")

	catalogs := set.Catalogs()
	require.Len(t, catalogs, 3)
	assert.Equal(t, "Empty.english", catalogs[0].ID().String())
	assert.Equal(t, "Errors.french", catalogs[2].ID().String())
}

func TestBuilderIsolation(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	id := ID{Language: "english", Domain: "index"}

	require.NoError(t, b.Add(id, "a", "A", "test"))

	first := b.Build()

	require.NoError(t, b.Add(id, "b", "B", "test"))

	second := b.Build()

	c, _ := first.Catalog("english", "index")
	assert.Equal(t, 1, c.Len(), "earlier sets must not see later additions")

	c, _ = second.Catalog("english", "index")
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Greater(t, second.Generation(), first.Generation())
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	id := ID{Language: "english", Domain: "Errors"}

	require.NoError(t, b.Add(id, "k", "v", "one.php"))

	err := b.Add(id, "k", "v2", "two.php")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "one.php")
	assert.Contains(t, err.Error(), "two.php")

	assert.Error(t, b.Add(ID{Domain: "Errors"}, "k", "v", "x"))
	assert.Error(t, b.Add(ID{Language: "english"}, "k", "v", "x"))
	assert.Error(t, b.Add(id, "", "v", "x"))
	assert.Error(t, b.Add(id, "bad", "%0$s", "x"))
}

func TestBuilderConcurrentAdd(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id := ID{Language: "english", Domain: fmt.Sprintf("D%d", i)}
			for k := range 50 {
				assert.NoError(t, b.Add(id, fmt.Sprintf("k%d", k), "text %1$s", "test"))
			}
		}()
	}

	wg.Wait()

	set := b.Build()
	assert.Equal(t, 8, set.Len())

	c, ok := set.Catalog("english", "D3")
	require.True(t, ok)
	assert.Equal(t, 50, c.Len())
}

func TestNilSet(t *testing.T) {
	t.Parallel()

	var set *Set

	_, ok := set.Catalog("english", "Errors")
	assert.False(t, ok)
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Languages())
	assert.Zero(t, set.Generation())
}
