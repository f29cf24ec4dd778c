package atelier

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxUploadBytes = 50 << 20
	maxImageWidth  = 1600
	jpegQuality    = 85
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// sanitizeFilename keeps the original name recognizable while making it
// safe to use as a path segment, and prefixes a timestamp so repeated
// uploads of the same file never collide.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)
}

// handleUpload accepts one image or video as multipart field "file".
// Oversized images are scaled down and re-encoded; videos are stored
// verbatim. Responds with the public URL of the stored file.
func (a *App) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file provided"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "File too large (max 50MB)"})
	}

	contentType := fh.Header.Get("Content-Type")
	isImage := strings.HasPrefix(contentType, "image/")
	isVideo := strings.HasPrefix(contentType, "video/")
	if !isImage && !isVideo {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Only image and video files are allowed"})
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "File too large (max 50MB)"})
	}

	name := sanitizeFilename(fh.Filename)
	if isImage {
		if resized, ok := shrinkImage(data); ok {
			data = resized
			name = replaceExt(name, ".jpg")
		}
	}

	if err := os.MkdirAll(a.cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(a.cfg.UploadsDir, name), data, 0o644); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": "/uploads/" + name})
}

// shrinkImage scales an image whose width exceeds the cap down to
// maxImageWidth and re-encodes it as JPEG. Undecodable or already-small
// images are left untouched; the second return value reports whether a
// resize happened.
func shrinkImage(data []byte) ([]byte, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxImageWidth {
		return nil, false
	}

	h := bounds.Dy() * maxImageWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
