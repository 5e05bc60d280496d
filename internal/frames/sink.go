// Package frames writes rendered frames to disk.
package frames

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const Ext = ".jpg"

var ErrEmptyFrame = errors.New("frames: empty frame")

// Sink receives finished frames for one variable at a time.
type Sink interface {
	// Prepare creates whatever the variable's frames need and returns the
	// directory they land in.
	Prepare(alias string) (string, error)
	Write(alias, name string, img image.Image) error
	// Pattern globs every frame written for alias.
	Pattern(alias string) string
	AnimationPath(alias string) string
}

// FileSink lays frames out as <base>/<alias>/<name>.jpg.
type FileSink struct {
	baseDir string
	// Scale shrinks frames before encoding when in (0, 1).
	Scale   float64
	Quality int
}

func New(baseDir string) *FileSink {
	return &FileSink{baseDir: baseDir, Scale: 1, Quality: jpeg.DefaultQuality}
}

func (s *FileSink) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileSink) BaseDir() string { return s.baseDir }

func (s *FileSink) Dir(alias string) string {
	return filepath.Join(s.baseDir, alias)
}

// Prepare creates the variable's directory and removes frames left there by
// an earlier run, so the animation only picks up this run's frames.
func (s *FileSink) Prepare(alias string) (string, error) {
	dir := s.Dir(alias)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	stale, err := filepath.Glob(s.Pattern(alias))
	if err != nil {
		return "", err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (s *FileSink) Path(alias, name string) string {
	return filepath.Join(s.Dir(alias), name+Ext)
}

// Pattern is the glob matching every frame of alias.
func (s *FileSink) Pattern(alias string) string {
	return filepath.Join(s.Dir(alias), "*"+Ext)
}

func (s *FileSink) AnimationPath(alias string) string {
	return filepath.Join(s.Dir(alias), alias+".gif")
}

func (s *FileSink) Write(alias, name string, img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptyFrame, name)
	}
	out := Downscale(img, s.Scale)

	path := s.Path(alias, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, out, &jpeg.Options{Quality: s.Quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// FrameName is the zero-padded per-timestep file stem, e.g. temperature_07.
func FrameName(alias string, t int) string {
	return fmt.Sprintf("%s_%02d", alias, t)
}

// Downscale resizes img by scale with bilinear filtering. Scales outside
// (0, 1) return img unchanged. Each side keeps at least one pixel.
func Downscale(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())*scale), 1)
	h := max(int(float64(b.Dy())*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
