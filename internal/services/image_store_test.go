package services

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *ImageStore {
	t.Helper()
	return &ImageStore{Dir: t.TempDir(), MaxWidth: 500}
}

func encodePNG(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestImageStoreRejectsNonImage(t *testing.T) {
	store := testStore(t)

	_, err := store.Save(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	entries, readErr := os.ReadDir(store.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "rejected uploads leave no files")
}

func TestImageStoreKeepsSmallImages(t *testing.T) {
	store := testStore(t)

	name, err := store.Save(encodePNG(t, 300, 200))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	f, err := os.Open(filepath.Join(store.Dir, name))
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestImageStoreScalesDownPreservingAspect(t *testing.T) {
	store := testStore(t)

	img := image.NewRGBA(image.Rect(0, 0, 1000, 400))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	name, err := store.Save(&buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	f, err := os.Open(filepath.Join(store.Dir, name))
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Width)
	assert.Equal(t, 200, cfg.Height, "aspect ratio survives the resize")
}
