package advisory

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	maxReceiptDimension = 1600
	receiptJPEGQuality  = 85
	receiptMIMEType     = "image/jpeg"

	// maxReceiptPixels bounds the decoded size of an upload. Headers are
	// checked first so an oversized image is never allocated.
	maxReceiptPixels = 40_000_000
)

// PrepareReceiptImage decodes a photo, applies its EXIF orientation, scales
// it down to fit maxReceiptDimension and re-encodes it as JPEG.
func PrepareReceiptImage(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("PrepareReceiptImage: empty image: %w", ErrReceiptUnreadable)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("PrepareReceiptImage: reading header: %v: %w", err, ErrReceiptUnreadable)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxReceiptPixels {
		return nil, fmt.Errorf("PrepareReceiptImage: %dx%d exceeds %d pixels: %w", cfg.Width, cfg.Height, maxReceiptPixels, ErrReceiptUnreadable)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("PrepareReceiptImage: decoding: %v: %w", err, ErrReceiptUnreadable)
	}

	b := img.Bounds()
	if b.Dx() > maxReceiptDimension || b.Dy() > maxReceiptDimension {
		img = imaging.Fit(img, maxReceiptDimension, maxReceiptDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(receiptJPEGQuality)); err != nil {
		return nil, fmt.Errorf("PrepareReceiptImage: encoding: %w", err)
	}
	return buf.Bytes(), nil
}
