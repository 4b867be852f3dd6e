package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG: signature plus IHDR chunk header is enough for sniffing
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestImageUploadStoresSniffedImage(t *testing.T) {
	store := NewMemoryObjectStore("https://cdn.test/")
	svc := NewImageService(store, 1<<20)

	url, err := svc.Upload(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.test/banners/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, ok := store.Object(strings.TrimPrefix(url, "https://cdn.test/"))
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	svc := NewImageService(NewMemoryObjectStore("https://cdn.test"), 1<<20)

	_, err := svc.Upload(context.Background(), strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestImageUploadRejectsOversize(t *testing.T) {
	svc := NewImageService(NewMemoryObjectStore("https://cdn.test"), 16)

	_, err := svc.Upload(context.Background(), bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
