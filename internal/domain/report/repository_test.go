package report

import (
	"context"
	"testing"
	"time"

	"foodreport/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReport(t *testing.T, id, date string) Report {
	t.Helper()
	f := validFields()
	f.DateYYYYMMDD = date
	r, err := New(id, f)
	require.NoError(t, err)
	return r
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	r := mustReport(t, "r1", "20240101")
	require.NoError(t, repo.Create(ctx, r))

	got, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestRepositoryCreateDuplicateIsConflict(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustReport(t, "r1", "20240101")))
	err := repo.Create(ctx, mustReport(t, "r1", "20240202"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "20240101", got.DateYYYYMMDD, "existing row is not overwritten")
}

func TestRepositoryFindMissing(t *testing.T) {
	repo := testRepository(t)
	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepositoryFindAllOrder(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustReport(t, "old", "20230101")))
	require.NoError(t, repo.Create(ctx, mustReport(t, "new-a", "20240101")))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Create(ctx, mustReport(t, "new-b", "20240101")))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"new-b", "new-a", "old"}, ids)
}

func TestRepositoryFindAllEmpty(t *testing.T) {
	all, err := testRepository(t).FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestRepositoryUpdate(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	r := mustReport(t, "r1", "20240101")
	r.Link = "https://example.com"
	require.NoError(t, repo.Create(ctx, r))

	f := r.Fields()
	f.Rating = 2
	f.Link = ""
	f.Place = ""
	updated, err := r.WithUpdatedFields(f)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, "", got.Link)
}

func TestRepositoryUpdateMissing(t *testing.T) {
	repo := testRepository(t)
	err := repo.Update(context.Background(), mustReport(t, "ghost", "20240101"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepositoryDeleteReturnsImageURL(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	r := mustReport(t, "r1", "20240101")
	require.NoError(t, repo.Create(ctx, r))

	imgURL, err := repo.Delete(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r.ImgURL, imgURL)

	_, err = repo.FindByID(ctx, "r1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.Delete(ctx, "r1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
