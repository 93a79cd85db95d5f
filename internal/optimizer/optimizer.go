package optimizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/disintegration/gift"
	"github.com/rs/zerolog"

	_ "golang.org/x/image/webp"
	_ "image/jpeg"

	"github.com/runrevr/ImageRefresh-sub002/internal/domain"
	"github.com/runrevr/ImageRefresh-sub002/internal/storage"
)

// MaxDimension is the longest side accepted by the provider's edit endpoint.
const MaxDimension = 1024

// Optimizer normalizes uploaded images before they are submitted to the
// external transformation API: large images are proportionally resized so the
// longer side equals MaxDimension, and everything is re-encoded as PNG.
type Optimizer struct {
	store  *storage.FileStore
	logger zerolog.Logger
	maxDim int
	now    func() time.Time
}

// New constructs an Optimizer writing its output into the given store.
func New(store *storage.FileStore, logger zerolog.Logger) *Optimizer {
	return &Optimizer{store: store, logger: logger, maxDim: MaxDimension, now: time.Now}
}

// Optimize reads the image at srcPath, normalizes it and writes the result to
// a new temp file inside the uploads directory. The source file is never
// modified or deleted.
func (o *Optimizer) Optimize(ctx context.Context, srcPath string) (string, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrImageNotFound, srcPath)
		}
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrOptimization, srcPath, err)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", domain.ErrOptimization, srcPath, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > o.maxDim || height > o.maxDim {
		g := gift.New(resizeFilter(width, height, o.maxDim))
		dst := image.NewRGBA(g.Bounds(bounds))
		g.Draw(dst, src)
		src = dst
		o.logger.Debug().
			Str("source", srcPath).
			Str("format", format).
			Int("width", dst.Bounds().Dx()).
			Int("height", dst.Bounds().Dy()).
			Msg("optimizer: resized image")
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, src); err != nil {
		return "", fmt.Errorf("%w: encode png: %v", domain.ErrOptimization, err)
	}

	key := fmt.Sprintf("temp-%d.png", o.now().UnixMilli())
	if _, err := o.store.Write(ctx, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOptimization, err)
	}
	return o.store.Abs(key), nil
}

// resizeFilter scales so the longer side lands on maxDim, letting gift derive
// the other side to preserve the aspect ratio.
func resizeFilter(width, height, maxDim int) gift.Filter {
	if width >= height {
		return gift.Resize(maxDim, 0, gift.LanczosResampling)
	}
	return gift.Resize(0, maxDim, gift.LanczosResampling)
}
