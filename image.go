package fieldnav

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
)

// BitmapFromImage classifies each pixel of img. Transparent pixels and pixels whose
// luminance is at or above threshold (0-255) are free; everything else is blocked.
func BitmapFromImage(img image.Image, threshold uint8) *Bitmap {
	bounds := img.Bounds()
	bm := NewBitmap(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			_, _, _, a := c.RGBA()
			if a < 0x8000 {
				continue
			}
			gray := color.GrayModel.Convert(c).(color.Gray)
			if gray.Y < threshold {
				bm.Set(x-bounds.Min.X, y-bounds.Min.Y, true)
			}
		}
	}
	return bm
}

// LoadBitmap decodes a PNG, JPEG, GIF or BMP file into an occupancy bitmap.
func LoadBitmap(path string, threshold uint8) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode field image %s: %w", path, err)
	}

	bm := BitmapFromImage(img, threshold)
	w, h := bm.Size()
	slog.Info("field image loaded",
		"path", path,
		"format", format,
		"width", w,
		"height", h,
		"blocked", bm.Count(),
	)
	return bm, nil
}
