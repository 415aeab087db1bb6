package helpers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cornerwatch-go/internal/models"
)

const (
	// Thumbnail bounds for the capture browser
	ThumbnailWidth  = 320
	ThumbnailHeight = 240

	ThumbnailQuality = 75
)

// IsJPEG checks the JPEG magic bytes
func IsJPEG(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == 0xFF && data[1] == 0xD8
}

// EncodeJPEG encodes a BGR Mat at the given quality
func EncodeJPEG(mat gocv.Mat, quality int) ([]byte, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	jpegBuf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	defer jpegBuf.Close()

	return jpegBuf.GetBytes(), nil
}

// Denoise applies the profile's noise reduction. It returns a new Mat the
// caller must close, or ok=false when the mode is off.
func Denoise(src gocv.Mat, mode models.NoiseReduction) (gocv.Mat, bool) {
	switch mode {
	case models.NoiseReductionFast:
		dst := gocv.NewMat()
		gocv.MedianBlur(src, &dst, 3)
		return dst, true
	case models.NoiseReductionHighQuality:
		dst := gocv.NewMat()
		gocv.FastNlMeansDenoisingColored(src, &dst)
		return dst, true
	default:
		return gocv.Mat{}, false
	}
}

// FitWithin scales width x height down to fit the bounds, never up
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	scale := float64(maxWidth) / float64(width)
	if s := float64(maxHeight) / float64(height); s < scale {
		scale = s
	}
	if scale > 1.0 {
		scale = 1.0
	}
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	return max(w, 1), max(h, 1)
}

// Thumbnail decodes a JPEG, scales it to fit the bounds and stamps an optional caption
func Thumbnail(jpegData []byte, maxWidth, maxHeight int, caption string) ([]byte, error) {
	src, err := jpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode JPEG: %w", err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	if caption != "" {
		drawCaption(dst, caption)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCaption draws white text on a dark strip along the bottom edge
func drawCaption(img *image.RGBA, caption string) {
	bounds := img.Bounds()
	strip := image.Rect(0, bounds.Max.Y-16, bounds.Max.X, bounds.Max.Y)
	draw.Draw(img, strip, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(bounds.Max.Y - 4)},
	}
	d.DrawString(caption)
}
