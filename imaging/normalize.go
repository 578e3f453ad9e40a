// Package imaging normalizes generated header images to a fixed presentation
// size. Normalization is a best-effort enhancement: every entry point falls
// back to the unmodified input instead of failing the caller.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
)

// JPEG re-encode quality for lossy sources.
const jpegQuality = 85

// Normalize scales and center-crops raw image bytes to exactly
// targetWidth x targetHeight, preserving aspect ratio during the scale and
// trimming equal margins during the crop. The output is re-encoded in the
// source format family (JPEG at quality 85, everything else as PNG). On any
// processing failure the original bytes are returned unchanged.
func Normalize(raw []byte, targetWidth, targetHeight int) []byte {
	normalized, err := normalizeBytes(raw, targetWidth, targetHeight)
	if err != nil {
		return raw
	}
	return normalized
}

// NormalizeFile normalizes the image at path and writes the result next to it
// as <base>_optimized<ext>. It returns the optimized path, or the original
// path when normalization failed.
func NormalizeFile(path string, targetWidth, targetHeight int) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return path
	}
	normalized, err := normalizeBytes(raw, targetWidth, targetHeight)
	if err != nil {
		return path
	}
	ext := filepath.Ext(path)
	optimized := strings.TrimSuffix(path, ext) + "_optimized" + ext
	if err := os.WriteFile(optimized, normalized, 0o644); err != nil {
		return path
	}
	return optimized
}

func normalizeBytes(raw []byte, targetWidth, targetHeight int) ([]byte, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, errors.New("invalid target dimensions")
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return encode(normalizeImage(img, targetWidth, targetHeight), format)
}

func normalizeImage(img image.Image, targetWidth, targetHeight int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return img
	}

	originalRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(targetWidth) / float64(targetHeight)

	var scaledW, scaledH int
	if originalRatio > targetRatio {
		// Source is relatively wider: match the height, crop the width.
		scaledH = targetHeight
		scaledW = int(math.Round(float64(srcW) * float64(targetHeight) / float64(srcH)))
	} else {
		scaledW = targetWidth
		scaledH = int(math.Round(float64(srcH) * float64(targetWidth) / float64(srcW)))
	}
	if scaledW < targetWidth {
		scaledW = targetWidth
	}
	if scaledH < targetHeight {
		scaledH = targetHeight
	}

	scaled := img
	if scaledW != srcW || scaledH != srcH {
		scaled = resize(img, scaledW, scaledH)
	}
	if scaledW == targetWidth && scaledH == targetHeight {
		return scaled
	}
	left := (scaledW - targetWidth) / 2
	top := (scaledH - targetHeight) / 2
	return crop(scaled, left, top, targetWidth, targetHeight)
}

func resize(src image.Image, targetWidth, targetHeight int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	srcBounds := src.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()
	for y := 0; y < targetHeight; y++ {
		srcY := srcBounds.Min.Y + (y*srcH)/targetHeight
		for x := 0; x < targetWidth; x++ {
			srcX := srcBounds.Min.X + (x*srcW)/targetWidth
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}

func crop(src image.Image, left, top, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	min := src.Bounds().Min
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst.Set(x, y, src.At(min.X+left+x, min.Y+top+y))
		}
	}
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
