package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// multipartMemory is how much of a form is kept in memory before spilling to
// disk.
const multipartMemory = 32 << 20

// upload is an uploaded file copied to a temporary path.
type upload struct {
	Name        string
	Path        string
	ContentType string
}

// uploads tracks temporary files so they are always removed.
type uploads []upload

func (u uploads) cleanup() {
	for _, f := range u {
		_ = os.Remove(f.Path)
	}
}

func (u uploads) items() []core.Item {
	items := make([]core.Item, len(u))
	for i, f := range u {
		items[i] = core.Item{Input: core.Input{Path: f.Path}, Name: f.Name}
	}
	return items
}

var errTooLarge = errors.New("upload too large")

// parseForm parses a multipart request with the configured size limit.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errTooLarge
		}
		return err
	}
	return nil
}

// saveUpload copies one form file to a temporary file that keeps the
// original extension, which the content classifier relies on. A non-empty
// ext replaces it.
func saveUpload(fh *multipart.FileHeader, ext string) (upload, error) {
	src, err := fh.Open()
	if err != nil {
		return upload{}, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fh.Filename))
	}
	dst, err := os.CreateTemp("", "jurado-*"+ext)
	if err != nil {
		return upload{}, fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return upload{}, fmt.Errorf("writing temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return upload{}, fmt.Errorf("closing temp file: %w", err)
	}

	return upload{
		Name:        filepath.Base(fh.Filename),
		Path:        dst.Name(),
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// saveUploads copies every file; on failure nothing is left behind.
func saveUploads(files []*multipart.FileHeader) (uploads, error) {
	out := make(uploads, 0, len(files))
	for _, fh := range files {
		u, err := saveUpload(fh, "")
		if err != nil {
			out.cleanup()
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// mimeAccepted reports whether an upload's declared type matches ct, and the
// message returned when it does not.
func mimeAccepted(ct core.ContentType, mime string) (bool, string) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch ct {
	case core.ContentImage:
		return strings.HasPrefix(mime, "image/"), "Arquivo deve ser uma imagem"
	case core.ContentAudio:
		return strings.HasPrefix(mime, "audio/"), "Arquivo deve ser de áudio"
	case core.ContentVideo:
		return strings.HasPrefix(mime, "video/"), "Arquivo deve ser de vídeo"
	case core.ContentDocument:
		return mime == "application/pdf", "Arquivo deve ser um PDF"
	default:
		return true, ""
	}
}
