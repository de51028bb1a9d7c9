// Package imaging holds the resize, thumbnail and encode steps applied to
// template images.
package imaging

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	// DefaultThumbnail is the bounding box of index page thumbnails.
	DefaultThumbnail = 128

	jpegQuality = 90
)

// Resize scales src to exactly w×h pixels.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ThumbnailSize returns the size of an image of w×h shrunk to fit inside
// maxW×maxH. The aspect ratio is kept and images are never enlarged.
func ThumbnailSize(w, h, maxW, maxH int) (int, int) {
	if w > maxW {
		h = (h*maxW + w/2) / w
		w = maxW
	}
	if h > maxH {
		w = (w*maxH + h/2) / h
		h = maxH
	}
	return max(w, 1), max(h, 1)
}

// Thumbnail shrinks src to fit inside maxW×maxH.
func Thumbnail(src image.Image, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	w, h := ThumbnailSize(b.Dx(), b.Dy(), maxW, maxH)
	return Resize(src, w, h)
}

// ContentType is the MIME type Encode writes for format.
func ContentType(format string) string {
	switch format {
	case "jpeg", "gif":
		return "image/" + format
	}
	return "image/png"
}

// Encode writes img in the given format. Formats without an encoder are
// written as PNG; ContentType reports what was written.
func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(w, img, nil)
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ContentType(format), err)
	}
	return nil
}
