package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImageExtension(t *testing.T) {
	ext, ok := ImageExtension("image/PNG")
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	_, ok = ImageExtension("application/pdf")
	assert.False(t, ok)
}

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	name := objectName("/reviews/p1/", ".jpg", now)
	assert.True(t, strings.HasPrefix(name, "reviews/p1/"))
	assert.True(t, strings.HasSuffix(name, "-20240301120000.jpg"))
}

func TestPublicURL(t *testing.T) {
	c := &CloudStorageClient{bucketName: "shop-media"}
	assert.Equal(t, "https://storage.googleapis.com/shop-media/a/b.png", c.PublicURL("a/b.png"))
}
