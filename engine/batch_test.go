package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteBatch_EmptyInput(t *testing.T) {
	eng := newTestEngine(newFakeStore(), nil)

	_, err := eng.DeleteBatch(context.Background(), "owner-1", nil)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindValidation, kind)
}

func TestDeleteBatch_CapAndComposition(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(store, nil)
	ctx := context.Background()

	// Nine owned reminders, then a 12-id input: ids[5] malformed, ids[11]
	// valid but owned by someone else.
	var owned []string
	for i := 0; i < 9; i++ {
		owned = append(owned, seedReminder(t, eng, "owner-1", "rem").ID)
	}
	foreign := seedReminder(t, eng, "owner-2", "theirs").ID

	missing := "eeeeeeeeeeeeeeeeeeeeeeee"
	input := []string{
		owned[0], owned[1], owned[2], owned[3], owned[4],
		"!!bad-id!!",
		owned[5], owned[6], owned[7],
		missing,
		owned[8], // position 10: beyond the cap
		foreign,  // position 11: unowned, but never inspected
	}

	outcome, err := eng.DeleteBatch(ctx, "owner-1", input)
	require.NoError(t, err)

	assert.Equal(t, []string{owned[8], foreign}, outcome.Ignored, "tail beyond the cap, verbatim")
	assert.Equal(t, []string{missing, "!!bad-id!!"}, outcome.NotFound, "missing valid ids first, then invalid ids")
	assert.Equal(t, []string{owned[0], owned[1], owned[2], owned[3], owned[4], owned[5], owned[6], owned[7]}, outcome.Done)

	// Every id in the first 10 lands in exactly one of found / not_found,
	// and list lengths cover the whole input.
	assert.Equal(t, len(input), len(outcome.Done)+len(outcome.NotFound)+len(outcome.Ignored))

	// One batch query, restricted to the syntactically valid head ids.
	require.Len(t, store.findOwnedCalls, 1)
	assert.NotContains(t, store.findOwnedCalls[0], "!!bad-id!!")
	assert.NotContains(t, store.findOwnedCalls[0], foreign, "ignored ids are never queried")
	assert.Len(t, store.findOwnedCalls[0], 9)

	// The found set was actually deleted; ignored ids survive.
	remaining, err := eng.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, owned[8], remaining[0].ID)
}

func TestDeleteBatch_AllInvalid(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(store, nil)

	outcome, err := eng.DeleteBatch(context.Background(), "owner-1", []string{"a", "b"})
	require.NoError(t, err)

	assert.Empty(t, outcome.Done)
	assert.Equal(t, []string{"a", "b"}, outcome.NotFound)
	assert.Empty(t, outcome.Ignored)
	assert.Empty(t, store.findOwnedCalls, "no valid ids means no store query")
}

func TestSetCompletionBatch_Idempotent(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(store, nil)
	ctx := context.Background()

	ids := []string{
		seedReminder(t, eng, "owner-1", "a").ID,
		seedReminder(t, eng, "owner-1", "b").ID,
	}

	first, err := eng.SetCompletionBatch(ctx, "owner-1", ids, true)
	require.NoError(t, err)
	second, err := eng.SetCompletionBatch(ctx, "owner-1", ids, true)
	require.NoError(t, err)

	assert.Equal(t, first.Done, second.Done, "found set must not change on repeat")

	listed, err := eng.List(ctx, "owner-1")
	require.NoError(t, err)
	for _, rem := range listed {
		assert.True(t, rem.Completed)
	}
}

func TestSetCompletionBatch_Uncomplete(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(store, nil)
	ctx := context.Background()

	id := seedReminder(t, eng, "owner-1", "a").ID
	_, err := eng.SetCompletionBatch(ctx, "owner-1", []string{id}, true)
	require.NoError(t, err)
	outcome, err := eng.SetCompletionBatch(ctx, "owner-1", []string{id}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{id}, outcome.Done)
	got, err := eng.Get(ctx, "owner-1", id)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestDeleteBatch_StoreFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(store, nil)
	ctx := context.Background()

	id := seedReminder(t, eng, "owner-1", "a").ID
	store.mutateErr = errors.New("connection reset")

	_, err := eng.DeleteBatch(ctx, "owner-1", []string{id})
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindStore, kind, "bulk failure aborts the batch, no partial result")
}
