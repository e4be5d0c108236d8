package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"foodreport/internal/imagestore"
	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	rep, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, 5, rep.Rating)
	assert.Equal(t, "", rep.Link)
	assert.Equal(t, "user-1", rep.UserID)
	assert.True(t, strings.HasPrefix(rep.ImgURL, baseURL+"/"))
	assert.Equal(t, baseURL+"/"+imgKey(1, ".jpg"), rep.ImgURL)

	data, contentType, ok := fx.images.Get(imgKey(1, ".jpg"))
	require.True(t, ok)
	assert.Equal(t, jpegBytes, data)
	assert.Equal(t, "image/jpeg", contentType)

	got, err := fx.svc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	a, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)
	b, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ImgURL, b.ImgURL)
}

func TestCreateUnauthorizedChangesNothing(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), "someone@example.com", ramenInput(), ramenImage())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	all, err := fx.repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 0, fx.images.Len())
}

func TestCreateValidationUploadsNothing(t *testing.T) {
	fx := newFixture(t)

	in := ramenInput()
	in.DateYYYYMMDD = "2024-01-01"
	_, err := fx.svc.Create(context.Background(), adminEmail, in, ramenImage())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 0, fx.images.Len())
}

func TestCreateRejectsBadImages(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, adminEmail, ramenInput(), Image{Filename: "empty.jpg"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = fx.svc.Create(ctx, adminEmail, ramenInput(), Image{Filename: "notes.txt", Data: []byte("hello world")})
	assert.ErrorContains(t, err, "JPEG or PNG")

	big := append(append([]byte{}, jpegBytes...), make([]byte, MaxImageSize)...)
	_, err = fx.svc.Create(ctx, adminEmail, ramenInput(), Image{Filename: "big.jpg", Data: big})
	assert.ErrorContains(t, err, "10MB")

	rep, err := fx.svc.Create(ctx, adminEmail, ramenInput(), Image{Filename: "ramen.png", Data: pngBytes})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rep.ImgURL, ".png"))
}

func TestCreateUnknownUser(t *testing.T) {
	repo := testRepository(t)
	users := new(MockUserDirectory)
	users.On("UserIDByEmail", mock.Anything, adminEmail).Return("", apperr.NotFound("user not found"))
	svc := NewService(repo, imagestore.NewMemory(), users, emailGate(adminEmail), baseURL, logger.Discard(), nil)

	_, err := svc.Create(context.Background(), adminEmail, ramenInput(), ramenImage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not registered")
	assert.False(t, errors.Is(err, apperr.ErrNotFound), "surfaces as an internal error")
	users.AssertExpectations(t)
}

func TestCreateRollsBackImageWhenPersistFails(t *testing.T) {
	fx := newFixture(t)
	fx.svc.reports = failingStore{Store: fx.repo}

	_, err := fx.svc.Create(context.Background(), adminEmail, ramenInput(), ramenImage())
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 0, fx.images.Len())
}

func TestCreateImageStoreFailure(t *testing.T) {
	fx := newFixture(t)
	fx.images.failPut = true

	_, err := fx.svc.Create(context.Background(), adminEmail, ramenInput(), ramenImage())
	assert.ErrorContains(t, err, "upload image")

	all, err := fx.repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateWithoutImageKeepsURL(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	in := ramenInput()
	in.Rating = 3
	updated, err := fx.svc.Update(ctx, adminEmail, created.ID, in, nil)
	require.NoError(t, err)

	assert.Equal(t, created.ImgURL, updated.ImgURL)
	assert.Equal(t, 3, updated.Rating)
	assert.True(t, fx.images.Has(imgKey(1, ".jpg")))

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)
}

func TestUpdateWithImageReplacesObject(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	updated, err := fx.svc.Update(ctx, adminEmail, created.ID, ramenInput(), &Image{Filename: "new.png", Data: pngBytes})
	require.NoError(t, err)

	assert.NotEqual(t, created.ImgURL, updated.ImgURL)
	assert.Equal(t, baseURL+"/"+imgKey(2, ".png"), updated.ImgURL)
	assert.False(t, fx.images.Has(imgKey(1, ".jpg")), "old image removed")
	assert.True(t, fx.images.Has(imgKey(2, ".png")))
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	in := ramenInput()
	in.Link = "https://example.com/ramen"
	created, err := fx.svc.Create(ctx, adminEmail, in, ramenImage())
	require.NoError(t, err)

	next := Input{ShopName: "ふが屋", Name: "つけ麺", Rating: 4, DateYYYYMMDD: "20240202"}
	updated, err := fx.svc.Update(ctx, adminEmail, created.ID, next, nil)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "", updated.Place)
	assert.Equal(t, "", updated.Comment)
	assert.Equal(t, "", updated.Link)
	assert.Equal(t, "つけ麺", updated.Name)
}

func TestUpdateMissingReport(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Update(context.Background(), adminEmail, "ghost", ramenInput(), &Image{Data: jpegBytes})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, fx.images.Len(), "no upload for a missing report")
}

func TestUpdateUnauthorized(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	in := ramenInput()
	in.Rating = 1
	_, err = fx.svc.Update(ctx, "intruder@example.com", created.ID, in, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
}

func TestUpdatePersistFailureKeepsOldImageAndDropsNew(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	fx.svc.reports = failingStore{Store: fx.repo}
	_, err = fx.svc.Update(ctx, adminEmail, created.ID, ramenInput(), &Image{Data: pngBytes})
	require.Error(t, err)

	assert.True(t, fx.images.Has(imgKey(1, ".jpg")))
	assert.False(t, fx.images.Has(imgKey(2, ".png")))
}

func TestUpdateOldImageDeleteFailureIsSurfaced(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	fx.images.failDelete = true
	_, err = fx.svc.Update(ctx, adminEmail, created.ID, ramenInput(), &Image{Data: pngBytes})
	assert.ErrorContains(t, err, "old image was not removed")

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/"+imgKey(2, ".png"), got.ImgURL, "report points at the new image")
}

func TestDeleteRemovesReportAndImage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, adminEmail, created.ID))

	_, err = fx.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, fx.images.Len())
}

func TestDeleteUnauthorizedAndMissing(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	assert.ErrorIs(t, fx.svc.Delete(ctx, "", created.ID), apperr.ErrUnauthorized)
	assert.ErrorIs(t, fx.svc.Delete(ctx, adminEmail, "ghost"), apperr.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Delete(ctx, adminEmail, ""), apperr.ErrValidation)
	assert.Equal(t, 1, fx.images.Len())
}

func TestDeleteSkipsForeignImageURL(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f := validFields()
	f.ImgURL = "https://elsewhere.example.com/pic.jpg"
	r, err := New("legacy", f)
	require.NoError(t, err)
	require.NoError(t, fx.repo.Create(ctx, r))

	require.NoError(t, fx.svc.Delete(ctx, adminEmail, "legacy"))
}

func TestDeleteImageFailureIsSurfaced(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)

	fx.images.failDelete = true
	err = fx.svc.Delete(ctx, adminEmail, created.ID)
	assert.ErrorContains(t, err, "image was not removed")

	_, err = fx.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "record removal happens first")
}

func TestServiceRecordsMetrics(t *testing.T) {
	fx := newFixture(t)
	m := metrics.New(prometheus.NewRegistry())
	fx.svc.metrics = m
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, adminEmail, ramenInput(), ramenImage())
	require.NoError(t, err)
	_, _ = fx.svc.Create(ctx, "nobody@example.com", ramenInput(), ramenImage())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportEvents.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportEvents.WithLabelValues("create", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImageOps.WithLabelValues("put", "ok")))
}

func TestGetRequiresID(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
