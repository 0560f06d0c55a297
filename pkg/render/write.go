package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/tiff"
)

// Formats lists the encodings accepted by Write.
var Formats = []string{"png", "tiff"}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// WriteTIFF encodes img as a deflate-compressed TIFF.
func WriteTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// Write encodes img in the named format ("png", "tif" or "tiff").
func Write(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return WritePNG(w, img)
	case "tif", "tiff":
		return WriteTIFF(w, img)
	}
	return fmt.Errorf("render: unsupported format %q", format)
}
