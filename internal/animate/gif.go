package animate

import (
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// GIFAssembler encodes the animation in-process, dithering every frame onto
// the Plan 9 palette.
type GIFAssembler struct{}

func (GIFAssembler) Assemble(ctx context.Context, pattern, output string, delay int) error {
	files, err := frameFiles(pattern)
	if err != nil {
		return err
	}

	anim := gif.GIF{LoopCount: 0}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := decodeFile(path)
		if err != nil {
			return fmt.Errorf("animate: %s: %w", path, err)
		}
		anim.Image = append(anim.Image, quantize(img))
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)
	return dst
}
