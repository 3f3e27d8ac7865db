// Package decoder locates and decodes QR symbols in raster frames.
package decoder

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

// Options tunes symbol detection.
type Options struct {
	// TryHarder spends more time looking for a symbol in each frame.
	TryHarder bool
	// PureBarcode assumes the frame holds nothing but an unrotated symbol.
	PureBarcode bool
}

// QR decodes QR symbols with the gozxing reader. The reader keeps internal
// state, so calls are serialised and the reader is reset after each one.
type QR struct {
	mu     sync.Mutex
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

var _ scan.Decoder = (*QR)(nil)

// New creates a QR decoder.
func New(opts Options) *QR {
	hints := map[gozxing.DecodeHintType]interface{}{}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if opts.PureBarcode {
		hints[gozxing.DecodeHintType_PURE_BARCODE] = true
	}
	return &QR{
		reader: qrcode.NewQRCodeReader(),
		hints:  hints,
	}
}

// Decode implements scan.Decoder. Failing to find, read, or checksum a symbol
// is reported as NotFound; anything else is an error.
func (d *QR) Decode(frame scan.Frame) scan.DecodeResult {
	if frame.Image == nil {
		return scan.Failed(errors.New("frame has no image"))
	}
	return d.DecodeImage(frame.Image)
}

// DecodeImage decodes img directly.
func (d *QR) DecodeImage(img image.Image) (res scan.DecodeResult) {
	if img.Bounds().Empty() {
		return scan.Failed(errors.New("image is empty"))
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return scan.Failed(fmt.Errorf("binarize frame: %w", err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.reader.Reset()

	defer func() {
		if r := recover(); r != nil {
			res = scan.Failed(fmt.Errorf("decoder panic: %v", r))
		}
	}()

	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		var readerErr gozxing.ReaderException
		if errors.As(err, &readerErr) {
			return scan.NotFound()
		}
		return scan.Failed(err)
	}

	return scan.Found(result.GetText(), points(result.GetResultPoints()))
}

func points(rps []gozxing.ResultPoint) []*geometry.Point {
	out := make([]*geometry.Point, 0, len(rps))
	for _, rp := range rps {
		if rp == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, &geometry.Point{X: rp.GetX(), Y: rp.GetY()})
	}
	return out
}
