package imageproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

const (
	MaxWidth    = 1200
	MaxHeight   = 630
	jpegQuality = 85
)

// outputFormats maps accepted upload types to the format they are stored in.
// There is no pure Go WebP encoder, so WebP is re-encoded as JPEG.
var outputFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	"image/webp": imaging.JPEG,
}

var formatInfo = map[imaging.Format]struct{ name, contentType string }{
	imaging.JPEG: {"jpeg", "image/jpeg"},
	imaging.PNG:  {"png", "image/png"},
	imaging.GIF:  {"gif", "image/gif"},
}

// Processor sniffs, decodes and downsizes uploads so that article images fit
// the featured image frame.
type Processor struct {
	maxWidth  int
	maxHeight int
}

func NewProcessor() *Processor {
	return &Processor{maxWidth: MaxWidth, maxHeight: MaxHeight}
}

// Process rejects anything that is not a JPEG, PNG, GIF or WebP image and
// returns the re-encoded result. Images already inside the frame keep their
// dimensions.
func (p *Processor) Process(data []byte) (*ports.ProcessedImage, error) {
	mime := mimetype.Detect(data)
	format, ok := outputFormats[mime.String()]
	if !ok {
		return nil, domain.ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	if b.Dx() > p.maxWidth || b.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	info := formatInfo[format]
	out := img.Bounds()
	return &ports.ProcessedImage{
		Data:        buf.Bytes(),
		Format:      info.name,
		ContentType: info.contentType,
		Width:       out.Dx(),
		Height:      out.Dy(),
	}, nil
}
