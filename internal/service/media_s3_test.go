package service

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectImage(t *testing.T) {
	body := bytes.NewReader(pngHeader)
	contentType, ext, err := detectImage(body)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	pos, err := body.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos, "reader must be rewound for the upload")

	_, _, err = detectImage(strings.NewReader("hello, world"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = detectImage(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestKeyFromURL(t *testing.T) {
	key, ok := keyFromURL("https://cdn.test/bucket/", "https://cdn.test/bucket/profiles/x.png")
	require.True(t, ok)
	assert.Equal(t, "profiles/x.png", key)

	_, ok = keyFromURL("https://cdn.test/bucket", "https://elsewhere.test/profiles/x.png")
	assert.False(t, ok)

	_, ok = keyFromURL("https://cdn.test/bucket", "https://cdn.test/bucket/")
	assert.False(t, ok)

	_, ok = keyFromURL("", "https://cdn.test/bucket/x.png")
	assert.False(t, ok)
}

func TestObjectKey(t *testing.T) {
	key := objectKey("/products/", ".jpg")
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, objectKey("products", ".jpg"))

	assert.True(t, strings.HasPrefix(objectKey("", ".png"), "misc/"))
}

func TestDefaultPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/shop", defaultPublicBaseURL("http://minio:9000/", "us-east-1", "shop"))
	assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com", defaultPublicBaseURL("", "eu-west-1", "shop"))
}
