package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Upscale enlarges img by an integer cell factor with nearest-neighbour
// sampling so every rendered pixel becomes a crisp cell×cell block.
func Upscale(img *image.NRGBA, cell int) *image.NRGBA {
	if cell <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*cell, b.Dy()*cell))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
