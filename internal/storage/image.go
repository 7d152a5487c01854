package storage

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jo-hoe/geminiocr/internal/common"
)

var allowedImageMimes = map[string]struct{}{
	common.MimeImagePNG:  {},
	common.MimeImageJPEG: {},
	common.MimeImageJPG:  {},
	common.MimeImageWebP: {},
}

// Image is an uploaded image held in memory.
type Image struct {
	Data     []byte
	MimeType string
}

// Base64 returns the image encoded with standard base64.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// ReadMultipartImage validates and reads an uploaded image (png/jpg/webp) into memory.
// Uploads larger than maxBytes are rejected.
func ReadMultipartImage(fileHeader *multipart.FileHeader, maxBytes int64) (Image, error) {
	if fileHeader == nil {
		return Image{}, fmt.Errorf("no file provided")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	data, err := readLimited(src, maxBytes)
	if err != nil {
		return Image{}, err
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("image is empty")
	}

	mimeType := resolveMime(fileHeader.Header.Get(common.HeaderContentType), fileHeader.Filename, data)
	if !isAllowedImageMime(mimeType) {
		return Image{}, fmt.Errorf("unsupported content type: %s", mimeType)
	}
	return Image{Data: data, MimeType: mimeType}, nil
}

// StripDataURL removes an optional "data:<mime>;base64," prefix from base64 image text.
// The payload itself is not decoded; malformed data is left for the backend to reject.
func StripDataURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return "", fmt.Errorf("malformed data url")
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if s == "" {
		return "", fmt.Errorf("image is empty")
	}
	return s, nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	return data, nil
}

// resolveMime trusts the declared type, then the extension, then the content itself.
func resolveMime(declared, filename string, data []byte) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if mt != "" && mt != common.ContentTypeOctets {
		if parsed, _, err := mime.ParseMediaType(mt); err == nil {
			return parsed
		}
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func isAllowedImageMime(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	_, ok := allowedImageMimes[mt]
	return ok
}
