// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded cover and project images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/folio-go/internal/util"
)

// Limits and output settings.
const (
	DefaultMaxBytes = 10 << 20
	MaxDimension    = 2400
	ThumbWidth      = 480
	ThumbHeight     = 480
	Quality         = 85

	originalsDir = "originals"
	thumbsDir    = "thumbs"
)

// ErrUnsupportedFormat is returned for data that is not JPEG, PNG, GIF or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned when the upload exceeds the byte limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// Upload describes a stored image and its thumbnail.
type Upload struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Processor stores normalised images below an upload directory.
type Processor struct {
	uploadDir string
	urlPrefix string
	maxBytes  int64
}

// NewProcessor creates a processor writing to uploadDir and producing URLs
// under urlPrefix (for example "/uploads").
func NewProcessor(uploadDir, urlPrefix string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  DefaultMaxBytes,
	}
}

// Dir returns the upload root.
func (p *Processor) Dir() string { return p.uploadDir }

// Process decodes an image, applies its EXIF orientation, caps its size,
// strips metadata by re-encoding, and stores it with a thumbnail.
func (p *Processor) Process(r io.Reader, filename string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	// WebP has no pure Go encoder; it is stored as JPEG.
	if format == "webp" {
		format = "jpeg"
	}
	name := outputName(filename, format)

	original, err := encodeImage(img, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	thumb, err := encodeImage(imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos), format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	id := uuid.NewString()
	if err := p.save(originalsDir, id, name, original); err != nil {
		return nil, err
	}
	if err := p.save(thumbsDir, id, name, thumb); err != nil {
		_ = os.RemoveAll(filepath.Join(p.uploadDir, originalsDir, id))
		return nil, err
	}

	return &Upload{
		ID:           id,
		URL:          path.Join(p.urlPrefix, originalsDir, id, name),
		ThumbnailURL: path.Join(p.urlPrefix, thumbsDir, id, name),
		Width:        img.Bounds().Dx(),
		Height:       img.Bounds().Dy(),
		MimeType:     "image/" + format,
		Size:         int64(len(original)),
	}, nil
}

// Delete removes the files of an upload.
func (p *Processor) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid upload id: %w", err)
	}
	for _, dir := range []string{originalsDir, thumbsDir} {
		if err := os.RemoveAll(filepath.Join(p.uploadDir, dir, id)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}
	return nil
}

func (p *Processor) save(kind, id, name string, data []byte) error {
	dir, err := util.SafeJoinPath(p.uploadDir, kind, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// outputName sanitises the client filename and gives it the extension of
// the stored format.
func outputName(filename, format string) string {
	base, err := util.SanitizeFilename(filename)
	if err != nil {
		base = "image"
	}
	stem := util.Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "image"
	}
	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	return stem + ext
}

// readExifOrientation returns the EXIF orientation tag, or 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the image format. TIFF is rejected because of
// CVE-2023-36308 in the imaging decoder.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
