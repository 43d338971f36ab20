package sniffer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG  MediaType = "jpeg"
	TypePNG   MediaType = "png"
	TypeGIF   MediaType = "gif"
	TypeWEBP  MediaType = "webp"
	TypeAVIF  MediaType = "avif"
	TypeSVG   MediaType = "svg"
	TypePDF   MediaType = "pdf"
	TypeMP4   MediaType = "mp4"
	TypeWEBM  MediaType = "webm"
	TypeOther MediaType = "other"
)

const headSize = 512

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

func (r Result) IsImage() bool {
	switch r.Type {
	case TypeJPEG, TypePNG, TypeGIF, TypeWEBP, TypeAVIF, TypeSVG:
		return true
	}
	return false
}

// Detect reads the head of r and returns it together with the classification, so callers
// can stitch the head back in front of the remaining stream.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, headSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	return Classify(head), head, nil
}

// Classify never fails: unrecognised payloads fall back to net/http content sniffing.
func Classify(head []byte) Result {
	if result, err := DetectHead(head); err == nil {
		return result
	}
	if len(head) == 0 {
		return Result{Type: TypeOther, MIME: "application/octet-stream"}
	}
	mime := http.DetectContentType(head)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return Result{Type: TypeOther, MIME: mime}
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isAVIF(head):
		return Result{Type: TypeAVIF, MIME: "image/avif"}, nil
	case isMP4(head):
		return Result{Type: TypeMP4, MIME: "video/mp4"}, nil
	case isWEBM(head):
		return Result{Type: TypeWEBM, MIME: "video/webm"}, nil
	case isPDF(head):
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}

	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func ftypBrand(head []byte) (string, bool) {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return "", false
	}
	return string(head[8:12]), true
}

func isAVIF(head []byte) bool {
	brand, ok := ftypBrand(head)
	return ok && (brand == "avif" || brand == "avis")
}

func isMP4(head []byte) bool {
	brand, ok := ftypBrand(head)
	if !ok {
		return false
	}
	switch brand {
	case "isom", "iso2", "mp41", "mp42", "avc1", "M4V ", "dash":
		return true
	}
	return false
}

func isWEBM(head []byte) bool {
	return bytes.HasPrefix(head, []byte{0x1a, 0x45, 0xdf, 0xa3})
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isSVG(head []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg")
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
