package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/game"
	"github.com/robalobadob/idiomle/apps/go-server/internal/pinyin"
	"github.com/robalobadob/idiomle/apps/go-server/internal/store"
)

func TestMemoryStore_SaveGetSweep(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	lk := pinyin.New()

	old := game.New("一马当先", 0, lk)
	old.StartedAt = time.Now().Add(-2 * time.Hour)
	fresh := game.New("画蛇添足", 0, lk)
	require.NoError(t, st.Save(ctx, old))
	require.NoError(t, st.Save(ctx, fresh))

	got, err := st.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Same(t, fresh, got)

	assert.Equal(t, 1, st.Sweep(ctx, time.Now().Add(-time.Hour)))
	_, err = st.Get(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
