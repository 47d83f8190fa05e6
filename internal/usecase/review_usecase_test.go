package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/errors"
)

type fakeImageStore struct {
	uploaded []string
	deleted  []string
	fail     bool
}

func (s *fakeImageStore) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	if s.fail {
		return "", fmt.Errorf("bucket unavailable")
	}
	url := fmt.Sprintf("https://storage.googleapis.com/test/%s/%d.png", folder, len(s.uploaded))
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *fakeImageStore) DeleteImage(ctx context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func TestReviewAggregates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedProduct(t, store, "p1")
	images := &fakeImageStore{}
	uc := NewReviewUseCase(store.Reviews(), images, nil)

	_, created, err := uc.UpsertReview(ctx, "u1", "p1", ReviewInput{Rating: 5, Title: "Great"})
	require.NoError(t, err)
	assert.True(t, created)
	_, _, err = uc.UpsertReview(ctx, "u2", "p1", ReviewInput{Rating: 2})
	require.NoError(t, err)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.RatingCount)
	assert.Equal(t, 3.5, p.RatingAverage)

	_, created, err = uc.UpsertReview(ctx, "u2", "p1", ReviewInput{Rating: 4, Images: []string{"https://storage.googleapis.com/test/a.png"}})
	require.NoError(t, err)
	assert.False(t, created)

	p, err = store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.RatingCount)
	assert.Equal(t, 4.5, p.RatingAverage)

	require.NoError(t, uc.DeleteReview(ctx, "u2", "p1"))
	assert.Equal(t, []string{"https://storage.googleapis.com/test/a.png"}, images.deleted)

	p, err = store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.RatingCount)
	assert.Equal(t, 5.0, p.RatingAverage)

	page, err := uc.ListProductReviews(ctx, "p1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestReviewValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	seedProduct(t, store, "p1")
	uc := NewReviewUseCase(store.Reviews(), nil, nil)

	_, _, err := uc.UpsertReview(ctx, "u1", "p1", ReviewInput{Rating: 6})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, _, err = uc.UpsertReview(ctx, "u1", "p1", ReviewInput{Rating: 3, Images: []string{"not a url"}})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, _, err = uc.UpsertReview(ctx, "u1", "missing", ReviewInput{Rating: 3})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	err = uc.DeleteReview(ctx, "u1", "p1")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUploadReviewImage(t *testing.T) {
	ctx := context.Background()
	images := &fakeImageStore{}
	uc := NewReviewUseCase(newTestStore().Reviews(), images, nil)

	url, err := uc.UploadReviewImage(ctx, "u1", strings.NewReader("png"), "image/png", 3)
	require.NoError(t, err)
	assert.Contains(t, url, "reviews/u1/")

	_, err = uc.UploadReviewImage(ctx, "u1", strings.NewReader("pdf"), "application/pdf", 3)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.UploadReviewImage(ctx, "u1", strings.NewReader(""), "image/png", 6<<20)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	images.fail = true
	_, err = uc.UploadReviewImage(ctx, "u1", strings.NewReader("png"), "image/png", 3)
	assert.True(t, errors.Is(err, errors.CodeInternal))

	noStore := NewReviewUseCase(newTestStore().Reviews(), nil, nil)
	_, err = noStore.UploadReviewImage(ctx, "u1", strings.NewReader("png"), "image/png", 3)
	assert.True(t, errors.Is(err, errors.CodeInternal))
}
