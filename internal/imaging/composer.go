package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	disintegration "github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Composer renders the inventory portrait: a base image with item overlays
// stacked on top, encoded as PNG.
type Composer interface {
	Compose(base []byte, layers [][]byte) ([]byte, error)
}

// Chain tries each composer in order and returns the first success.
type Chain struct {
	composers []Composer
	log       *zap.Logger
}

// NewChain builds the default fallback chain.
func NewChain(log *zap.Logger) *Chain {
	return &Chain{
		composers: []Composer{imagingComposer{}, stdComposer{}},
		log:       log,
	}
}

func (c *Chain) Compose(base []byte, layers [][]byte) ([]byte, error) {
	var lastErr error
	for _, comp := range c.composers {
		out, err := comp.Compose(base, layers)
		if err == nil {
			return out, nil
		}
		lastErr = err
		c.log.Debug("composer failed, trying fallback", zap.Error(err))
	}
	return nil, fmt.Errorf("all composers failed: %w", lastErr)
}

// imagingComposer uses the imaging library's overlay primitive.
type imagingComposer struct{}

func (imagingComposer) Compose(base []byte, layers [][]byte) ([]byte, error) {
	img, err := disintegration.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, fmt.Errorf("decode base: %w", err)
	}
	canvas := disintegration.Clone(img)
	for i, layer := range layers {
		overlay, err := disintegration.Decode(bytes.NewReader(layer))
		if err != nil {
			return nil, fmt.Errorf("decode layer %d: %w", i, err)
		}
		canvas = disintegration.Overlay(canvas, overlay, image.Pt(0, 0), 1.0)
	}
	var buf bytes.Buffer
	if err := disintegration.Encode(&buf, canvas, disintegration.PNG); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// stdComposer is the pure-stdlib fallback (PNG in, PNG out, draw.Over).
type stdComposer struct{}

func (stdComposer) Compose(base []byte, layers [][]byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, fmt.Errorf("decode base: %w", err)
	}
	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)
	for i, layer := range layers {
		overlay, err := png.Decode(bytes.NewReader(layer))
		if err != nil {
			return nil, fmt.Errorf("decode layer %d: %w", i, err)
		}
		draw.Draw(canvas, bounds, overlay, overlay.Bounds().Min, draw.Over)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
