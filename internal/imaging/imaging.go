// Package imaging is the best-effort image capability of the pipeline. It
// decodes record image blobs to RGB so the interface mirrors a future
// version that reasons about them; the current decision logic discards the
// result. No failure on this path ever propagates: everything degrades to
// "no image".
package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mcq-baseline/internal/models"
)

// Decoder is the process-wide image capability, constructed once at startup
// and injected into the record processor. A disabled decoder stands in for
// an environment without image support.
type Decoder struct {
	enabled bool
	client  *http.Client
}

// NewDecoder returns the full decode capability.
func NewDecoder() *Decoder {
	return &Decoder{enabled: true, client: newHTTPClient()}
}

// Disabled returns a decoder with the capability switched off; Decode then
// always reports no image. Tests use it to prove answers do not depend on
// image data.
func Disabled() *Decoder {
	return &Decoder{}
}

// Decode attempts to turn the blob into an RGB image. The bool reports
// whether an image was produced; failures never surface as errors.
func (d *Decoder) Decode(blob models.ImageBlob) (image.Image, bool) {
	if d == nil || !d.enabled {
		return nil, false
	}

	switch blob.Kind {
	case models.BlobString:
		return d.decodeString(blob.Str)
	case models.BlobPixels:
		return decodePixels(blob)
	default:
		return nil, false
	}
}

// decodeString tries the string as base64-encoded image bytes first (raw
// bytes as they survive JSON transport), then as an http(s) URL, then as a
// filesystem path.
func (d *Decoder) decodeString(s string) (image.Image, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		if img, ok := decodeBytes(raw); ok {
			return img, true
		}
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if body := d.fetchURL(s); body != nil {
			return decodeBytes(body)
		}
		return nil, false
	}

	raw, err := os.ReadFile(s)
	if err != nil {
		return nil, false
	}
	return decodeBytes(raw)
}

func decodeBytes(raw []byte) (image.Image, bool) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return toRGB(img), true
}

// decodePixels interprets a nested numeric array as pixel data: H×W
// grayscale, H×W×C, or C×H×W with 1, 3 or 4 channels. Channel-first layouts
// are recognized by an outer dimension of 1, 3 or 4 and transposed; a height
// that happens to match a channel count is misread the same way the
// reference behavior is, and simply fails to decode.
func decodePixels(blob models.ImageBlob) (image.Image, bool) {
	planes := blob.Planes
	if planes == nil {
		planes = liftGray(blob.Gray)
	}
	if len(planes) == 0 || len(planes[0]) == 0 || len(planes[0][0]) == 0 {
		return nil, false
	}

	if isChannelCount(len(planes)) && !isChannelCount(len(planes[0][0])) {
		planes = transposeCHW(planes)
	}

	height := len(planes)
	width := len(planes[0])
	channels := len(planes[0][0])
	if !isChannelCount(channels) {
		return nil, false
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		if len(planes[y]) != width {
			return nil, false
		}
		for x := 0; x < width; x++ {
			px := planes[y][x]
			if len(px) != channels {
				return nil, false
			}
			img.SetRGBA(x, y, pixelToRGBA(px))
		}
	}
	return img, true
}

// toRGB flattens any decoded image onto an RGBA canvas so callers always
// see one pixel format regardless of the source encoding.
func toRGB(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func pixelToRGBA(px []float64) color.RGBA {
	switch len(px) {
	case 1:
		v := clampByte(px[0])
		return color.RGBA{R: v, G: v, B: v, A: 255}
	case 3:
		return color.RGBA{R: clampByte(px[0]), G: clampByte(px[1]), B: clampByte(px[2]), A: 255}
	default:
		// RGBA input; alpha is dropped during the RGB conversion
		return color.RGBA{R: clampByte(px[0]), G: clampByte(px[1]), B: clampByte(px[2]), A: 255}
	}
}

func isChannelCount(n int) bool {
	return n == 1 || n == 3 || n == 4
}

func liftGray(gray [][]float64) [][][]float64 {
	if len(gray) == 0 {
		return nil
	}
	planes := make([][][]float64, len(gray))
	for y, row := range gray {
		planes[y] = make([][]float64, len(row))
		for x, v := range row {
			planes[y][x] = []float64{v}
		}
	}
	return planes
}

// transposeCHW rearranges channel-first data into channel-last. Ragged input
// produces a shape that fails validation in decodePixels.
func transposeCHW(planes [][][]float64) [][][]float64 {
	channels := len(planes)
	height := len(planes[0])
	if height == 0 {
		return nil
	}
	width := len(planes[0][0])

	out := make([][][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([][]float64, width)
		for x := 0; x < width; x++ {
			px := make([]float64, channels)
			for c := 0; c < channels; c++ {
				if y >= len(planes[c]) || x >= len(planes[c][y]) {
					return nil
				}
				px[c] = planes[c][y][x]
			}
			out[y][x] = px
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
