package ports

import (
	"context"
	"testing"
	"time"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests verifying that a
// DocumentStore implementation adheres to the interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	name := "contract-doc-" + time.Now().Format("20060102150405")

	sample := func(rootID string) *domain.Document {
		return &domain.Document{
			Version: domain.DocumentVersion,
			Root: &domain.ComponentNode{
				ID: rootID, Kind: domain.KindPage,
				Children: []*domain.ComponentNode{
					{ID: rootID + "-btn", Kind: domain.KindButton, Label: "Hi"},
				},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample("page-1")
		require.NoError(t, store.Save(ctx, name, doc))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "page-1", loaded.Root.ID)
		require.Len(t, loaded.Root.Children, 1)
		assert.Equal(t, "Hi", loaded.Root.Children[0].Label)
	})

	t.Run("Save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample("page-2")))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "page-2", loaded.Root.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample("page-3")))
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		name1 := name + "-1"
		name2 := name + "-2"
		require.NoError(t, store.Save(ctx, name1, sample("page-4")))
		require.NoError(t, store.Save(ctx, name2, sample("page-5")))
		defer func() {
			_ = store.Delete(ctx, name1)
			_ = store.Delete(ctx, name2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name1)
		assert.Contains(t, names, name2)
	})
}
