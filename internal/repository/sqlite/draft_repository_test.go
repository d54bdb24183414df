package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formdraft/internal/repository"
)

func TestDraftRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", first.UserID)
	assert.Empty(t, first.Steps)
	assert.False(t, first.IsSubmitted)
	assert.Empty(t, first.ProfilePic)

	second, err := repo.GetOrCreate(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM drafts WHERE user_id = ?`, "uid-1"))
}

func TestDraftRepositoryGetOrCreateConcurrent(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	const n = 25
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := repo.GetOrCreate(ctx, "uid-race")
			errs[i] = err
			if d != nil {
				ids[i] = d.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM drafts`))
}

func TestDraftRepositoryGetDoesNotCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)

	_, err := repo.Get(context.Background(), "uid-1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM drafts`))
}

func TestDraftRepositoryUpsertStep(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	d, err := repo.UpsertStep(ctx, "uid-1", 2, json.RawMessage(`{"y":2}`))
	require.NoError(t, err)
	require.Len(t, d.Steps, 1)
	assert.JSONEq(t, `{"y":2}`, string(d.Steps[2]))

	d, err = repo.UpsertStep(ctx, "uid-1", 1, json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	require.Len(t, d.Steps, 2)
	assert.JSONEq(t, `{"x":1}`, string(d.Steps[1]))
	assert.JSONEq(t, `{"y":2}`, string(d.Steps[2]))

	// last write wins, no merge inside a step
	d, err = repo.UpsertStep(ctx, "uid-1", 2, json.RawMessage(`{"z":3}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":3}`, string(d.Steps[2]))

	again, err := repo.UpsertStep(ctx, "uid-1", 2, json.RawMessage(`{"z":3}`))
	require.NoError(t, err)
	assert.Equal(t, d.Steps, again.Steps)
	assert.Equal(t, d.ID, again.ID)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM drafts`))
}

func TestDraftRepositoryUpsertStepConcurrent(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(step int) {
			defer wg.Done()
			_, err := repo.UpsertStep(ctx, "uid-1", step, json.RawMessage(fmt.Sprintf(`{"step":%d}`, step)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	d, err := repo.Get(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, d.Steps, n)
	for i := 1; i <= n; i++ {
		assert.JSONEq(t, fmt.Sprintf(`{"step":%d}`, i), string(d.Steps[i]))
	}
}

func TestDraftRepositoryProfilePicAndSubmit(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	d, err := repo.UpsertProfilePic(ctx, "uid-1", "/uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", d.ProfilePic)
	assert.False(t, d.IsSubmitted)

	_, err = repo.UpsertStep(ctx, "uid-1", 1, json.RawMessage(`{"a":true}`))
	require.NoError(t, err)

	submitted, err := repo.MarkSubmitted(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, submitted.IsSubmitted)
	assert.Equal(t, "/uploads/a.png", submitted.ProfilePic)
	assert.Len(t, submitted.Steps, 1)

	again, err := repo.MarkSubmitted(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, submitted, again)

	// submitted drafts remain editable
	edited, err := repo.UpsertProfilePic(ctx, "uid-1", "/uploads/b.png")
	require.NoError(t, err)
	assert.True(t, edited.IsSubmitted)
	assert.Equal(t, "/uploads/b.png", edited.ProfilePic)
}

func TestDraftRepositoryMarkSubmittedCreates(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)

	d, err := repo.MarkSubmitted(context.Background(), "uid-new")
	require.NoError(t, err)
	assert.True(t, d.IsSubmitted)
	assert.Empty(t, d.Steps)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM drafts`))
}

func TestDraftRepositoryStepRacingSubmit(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := repo.UpsertStep(ctx, "uid-1", 3, json.RawMessage(`{"k":"v"}`))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := repo.MarkSubmitted(ctx, "uid-1")
		assert.NoError(t, err)
	}()
	wg.Wait()

	d, err := repo.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, d.IsSubmitted)
	assert.JSONEq(t, `{"k":"v"}`, string(d.Steps[3]))
}
