package trade

import (
	"fmt"
	"image"
	"image/color"
)

// ImageData2D is a decoded two dimensional image. Pixels are tightly packed,
// the first row in Data is the top row of the image.
type ImageData2D struct {
	Format PixelFormat
	Size   image.Point
	Data   []byte
}

// Stride returns the size of one row in bytes.
func (img *ImageData2D) Stride() int {
	return img.Size.X * img.Format.PixelSize()
}

// Validate checks that Data matches Format and Size.
func (img *ImageData2D) Validate() error {
	if img.Format.PixelSize() == 0 {
		return fmt.Errorf("unsupported pixel format %s", img.Format)
	}
	if img.Size.X <= 0 || img.Size.Y <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Size.X, img.Size.Y)
	}
	if expected := img.Stride() * img.Size.Y; len(img.Data) != expected {
		return fmt.Errorf("image data is %d bytes, expected %d", len(img.Data), expected)
	}
	return nil
}

// RGBA returns the pixels expanded to four channels. Missing channels are
// filled the way a sampler would: zero for green and blue, opaque alpha.
func (img *ImageData2D) RGBA() []byte {
	if img.Format == RGBA8Unorm {
		return img.Data
	}

	ps := img.Format.PixelSize()
	pixels := img.Size.X * img.Size.Y
	out := make([]byte, pixels*4)

	for i := 0; i < pixels; i++ {
		src := img.Data[i*ps : i*ps+ps]
		dst := out[i*4 : i*4+4]
		dst[3] = 0xff
		copy(dst, src)
	}

	return out
}

// FromImage converts a decoded image into ImageData2D. Gray images become
// R8Unorm, opaque images RGB8Unorm and everything else non-premultiplied
// RGBA8Unorm.
func FromImage(src image.Image) *ImageData2D {
	b := src.Bounds()
	out := &ImageData2D{Size: b.Size()}

	switch src.ColorModel() {
	case color.GrayModel:
		out.Format = R8Unorm
	default:
		if isOpaque(src) {
			out.Format = RGB8Unorm
		} else {
			out.Format = RGBA8Unorm
		}
	}

	ps := out.Format.PixelSize()
	out.Data = make([]byte, 0, b.Dx()*b.Dy()*ps)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			switch out.Format {
			case R8Unorm:
				out.Data = append(out.Data, c.R)
			case RGB8Unorm:
				out.Data = append(out.Data, c.R, c.G, c.B)
			default:
				out.Data = append(out.Data, c.R, c.G, c.B, c.A)
			}
		}
	}

	return out
}

func isOpaque(src image.Image) bool {
	if o, ok := src.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}

	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := src.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
