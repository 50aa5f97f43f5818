package models

import (
	"bytes"
	"encoding/json"
)

// ImageBlobKind tags the variant carried by an ImageBlob.
type ImageBlobKind int

const (
	// BlobAbsent means no image data was provided, or the value had a shape
	// the pipeline does not recognize. Both resolve to "no image".
	BlobAbsent ImageBlobKind = iota
	// BlobString is either base64-encoded image bytes, an http(s) URL, or a
	// filesystem path. The decoder tries them in that order.
	BlobString
	// BlobPixels is a nested numeric array: H×W grayscale, H×W×C, or C×H×W
	// with 1, 3 or 4 channels.
	BlobPixels
)

// ImageBlob is the opaque image field of a question record, modeled as a
// tagged union with one decode strategy per variant. Decoding it is always
// best-effort; the blob itself never rejects input, it just degrades to the
// absent variant.
type ImageBlob struct {
	Kind   ImageBlobKind
	Str    string
	Gray   [][]float64   // set when the array had two dimensions
	Planes [][][]float64 // set when the array had three dimensions
}

// UnmarshalJSON accepts a string, a nested numeric array, or null. Any other
// shape yields the absent variant rather than an error, matching the
// best-effort contract of the image path.
func (b *ImageBlob) UnmarshalJSON(data []byte) error {
	*b = ImageBlob{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		b.Kind = BlobString
		b.Str = s
		return nil
	}

	if data[0] == '[' {
		var planes [][][]float64
		if err := json.Unmarshal(data, &planes); err == nil {
			b.Kind = BlobPixels
			b.Planes = planes
			return nil
		}
		var gray [][]float64
		if err := json.Unmarshal(data, &gray); err == nil {
			b.Kind = BlobPixels
			b.Gray = gray
			return nil
		}
	}

	return nil
}
