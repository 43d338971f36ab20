package sniffer

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		head  []byte
		want  MediaType
		mime  string
		image bool
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG, "image/jpeg", true},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}, TypePNG, "image/png", true},
		{"gif", []byte("GIF89a...."), TypeGIF, "image/gif", true},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, "image/webp", true},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00"), TypeAVIF, "image/avif", true},
		{"mp4", []byte("\x00\x00\x00\x18ftypisom\x00\x00"), TypeMP4, "video/mp4", false},
		{"webm", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01}, TypeWEBM, "video/webm", false},
		{"pdf", []byte("%PDF-1.7\n"), TypePDF, "application/pdf", false},
		{"svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), TypeSVG, "image/svg+xml", true},
		{"text", []byte("plain words here"), TypeOther, "text/plain", false},
		{"empty", nil, TypeOther, "application/octet-stream", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.head)
			assert.Equal(t, tc.want, got.Type)
			assert.Equal(t, tc.mime, got.MIME)
			assert.Equal(t, tc.image, got.IsImage())
		})
	}
}

func TestDetectReturnsHead(t *testing.T) {
	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 1000)...)

	result, head, err := Detect(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, TypePDF, result.Type)
	assert.Len(t, head, headSize)
}

func TestMimeTypeFromHTTP(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "image/png; charset=binary")
	assert.Equal(t, "image/png", MimeTypeFromHTTP(h))
	assert.Equal(t, "", MimeTypeFromHTTP(http.Header{}))
}
