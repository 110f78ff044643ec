package terrain

import (
	"image"

	"github.com/nfnt/resize"

	"voxelspace/internal/mathutil"
)

// FitPowerOfTwo resamples img up to power-of-two dimensions.
// Heights use nearest neighbour so no new elevations are invented;
// colors are smoothed bilinearly. Images that already fit are returned as is.
func FitPowerOfTwo(img image.Image, smooth bool) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	tw, th := mathutil.NextPowerOfTwo(w), mathutil.NextPowerOfTwo(h)
	if tw == w && th == h {
		return img
	}
	interp := resize.NearestNeighbor
	if smooth {
		interp = resize.Bilinear
	}
	return resize.Resize(uint(tw), uint(th), img, interp)
}
