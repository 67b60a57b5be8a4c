package webapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// saveUploadedImages stores every file under the given multipart field into
// the upload dir and returns their public /uploads paths. A request without a
// multipart body is not an error; non-image files are.
func saveUploadedImages(c echo.Context, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}

	dir := actx.Config().GetUploadDir()
	var saved []string
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !imageExtensions[ext] {
			removeUploads(saved)
			return nil, errors.Errorf("unsupported image type %s", ext)
		}
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(fh.Filename))
		if err := writeUpload(fh, filepath.Join(dir, name)); err != nil {
			removeUploads(saved)
			return nil, err
		}
		saved = append(saved, "/uploads/"+name)
	}
	return saved, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "image"
	}
	return base
}

func writeUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
