package gpu

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// LoadPNG decodes a PNG file into RGBA, downscaling it so neither side
// exceeds maxSize (0 disables the limit).
func LoadPNG(filename string, maxSize int) (*image.RGBA, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open texture")
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	return FitRGBA(img, maxSize), nil
}

// ToRGBA converts img to an *image.RGBA anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// FitRGBA converts img to RGBA and scales it down, keeping the aspect ratio,
// when a side is larger than maxSize.
func FitRGBA(img image.Image, maxSize int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return ToRGBA(img)
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// CheckerImage builds a size x size checkerboard with cells squares per side.
// Used when no texture file is configured.
func CheckerImage(size, cells int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if cells < 1 {
		cells = 1
	}
	cell := max(1, size/cells)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// UploadTexture creates a sampled RGBA8 texture from img and returns its view.
func UploadTexture(device *wgpu.Device, queue *wgpu.Queue, img *image.RGBA, label string) (*wgpu.TextureView, error) {
	width := uint32(img.Rect.Dx())
	height := uint32(img.Rect.Dy())
	extent := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}

	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create texture %s", label)
	}
	defer texture.Release()

	view, err := texture.CreateView(nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create view %s", label)
	}

	queue.WriteTexture(
		texture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: height,
		},
		&extent,
	)
	return view, nil
}
