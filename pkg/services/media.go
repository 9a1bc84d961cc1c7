package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const maxUploadNameLength = 20

// UploadResult describes a stored resource.
type UploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MIME     string `json:"mime"`
}

// Media stores uploaded binaries in a directory served under a URL prefix.
type Media struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewMedia(dir, urlPrefix string) *Media {
	return &Media{dir: dir, urlPrefix: urlPrefix, now: time.Now}
}

// UploadName derives the stored file name: alphanumerics of the original base
// name, cut to 20 characters, then "-<unix millis>" and the extension.
func UploadName(original string, now time.Time) string {
	base := filepath.Base(filepath.ToSlash(original))
	base = path.Base(base)
	ext := path.Ext(base)
	name := alphanumeric(strings.TrimSuffix(base, ext))
	if len(name) > maxUploadNameLength {
		name = name[:maxUploadNameLength]
	}
	if name == "" {
		name = "file"
	}
	if ext = alphanumeric(ext); ext != "" {
		ext = "." + ext
	}
	return fmt.Sprintf("%s-%d%s", name, now.UnixMilli(), ext)
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// SaveUpload copies an uploaded file into the resources directory.
func (m *Media) SaveUpload(header *multipart.FileHeader) (*UploadResult, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return m.save(src, header.Filename)
}

// save writes src under a name derived from original. A failed copy leaves
// no partial file behind.
func (m *Media) save(src io.Reader, original string) (*UploadResult, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, err
	}

	filename := UploadName(original, m.now())
	fullPath := SafeJoin(m.dir, "", filename)
	if fullPath == "" {
		return nil, fmt.Errorf("invalid media path")
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, err
	}

	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, err
	}

	mime := "application/octet-stream"
	if mt, err := mimetype.DetectFile(fullPath); err == nil {
		mime = mt.String()
	}

	return &UploadResult{
		Filename: filename,
		URL:      strings.TrimSuffix(m.urlPrefix, "/") + "/" + filename,
		Size:     size,
		MIME:     mime,
	}, nil
}
