package terrain

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/sync/errgroup"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadOptions controls how map images are turned into grids.
type LoadOptions struct {
	// Fit resamples non power-of-two images up to the next power of two
	// instead of failing with ErrNotPowerOfTwo.
	Fit bool
}

// LoadHeightMap decodes an image file and uses its luminance as elevation.
// 16-bit grayscale sources keep their full range.
func LoadHeightMap(path string, opts LoadOptions) (*HeightMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Fit {
		img = FitPowerOfTwo(img, false)
	}
	m, err := HeightMapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("terrain: height map %s: %w", path, err)
	}
	return m, nil
}

// LoadColorMap decodes an image file into a ColorMap.
func LoadColorMap(path string, opts LoadOptions) (*ColorMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Fit {
		img = FitPowerOfTwo(img, true)
	}
	m, err := ColorMapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("terrain: color map %s: %w", path, err)
	}
	return m, nil
}

// LoadMaps loads a height map and a color map concurrently.
// The first failure is returned and both maps are discarded.
func LoadMaps(heightPath, colorPath string, opts LoadOptions) (*HeightMap, *ColorMap, error) {
	var (
		hm *HeightMap
		cm *ColorMap
		g  errgroup.Group
	)
	g.Go(func() (err error) {
		hm, err = LoadHeightMap(heightPath, opts)
		return err
	})
	g.Go(func() (err error) {
		cm, err = LoadColorMap(colorPath, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return hm, cm, nil
}

// HeightMapFromImage converts any image to a HeightMap.
func HeightMapFromImage(img image.Image) (*HeightMap, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]uint16, w*h)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				data[y*w+x] = uint16(src.Pix[off+x])
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				data[y*w+x] = uint16(g.Y)
			}
		}
	}

	return NewHeightMap(w, h, data)
}

// ColorMapFromImage converts any image to a ColorMap.
func ColorMapFromImage(img image.Image) (*ColorMap, error) {
	n := toNRGBA(img)
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]color.NRGBA, w*h)
	for y := 0; y < h; y++ {
		off := n.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			i := off + x*4
			data[y*w+x] = color.NRGBA{R: n.Pix[i], G: n.Pix[i+1], B: n.Pix[i+2], A: n.Pix[i+3]}
		}
	}
	return NewColorMap(w, h, data)
}

func decodeFile(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("terrain: read %s: %w", path, err)
	}
	// tga registers without a magic number and would claim every file,
	// so it is only used for .tga paths.
	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(bytes.NewReader(raw))
	} else {
		img, _, err = image.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("terrain: decode %s: %w", path, err)
	}
	return img, nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16:
		// No alpha: draw and force opaque
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
