package dataset

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"gorgonia.org/tensor"
)

// ImageOptions controls how an image becomes a feature vector.
type ImageOptions struct {
	Width, Height int
	Grayscale     bool
}

func (o ImageOptions) channels() int {
	if o.Grayscale {
		return 1
	}
	return 3
}

// Dim returns the length of the feature vectors produced with o.
func (o ImageOptions) Dim() int {
	return o.Width * o.Height * o.channels()
}

// ImageTensor resizes img to o.Width x o.Height with nearest-neighbour
// sampling and returns it as a (C, H, W) tensor with values in [0, 1].
func ImageTensor(img image.Image, o ImageOptions) (*tensor.Dense, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, errors.Errorf("invalid image size %dx%d", o.Width, o.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	c := o.channels()
	plane := o.Width * o.Height
	backing := make([]float64, c*plane)
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			px := dst.RGBAAt(x, y)
			i := y*o.Width + x
			if o.Grayscale {
				g := color.GrayModel.Convert(px).(color.Gray)
				backing[i] = float64(g.Y) / 255
				continue
			}
			backing[i] = float64(px.R) / 255
			backing[plane+i] = float64(px.G) / 255
			backing[2*plane+i] = float64(px.B) / 255
		}
	}
	return tensor.New(tensor.WithShape(c, o.Height, o.Width), tensor.WithBacking(backing)), nil
}

// Flatten turns a (C, H, W) tensor into a pixel-major vector, r,g,b,r,g,b...
func Flatten(t *tensor.Dense) ([]float64, error) {
	if t.Dims() != 3 {
		return nil, errors.Errorf("want a (C, H, W) tensor, got shape %v", t.Shape())
	}
	hwc := t.Clone().(*tensor.Dense)
	if err := hwc.T(1, 2, 0); err != nil {
		return nil, errors.Wrap(err, "transposing image tensor")
	}
	if err := hwc.Transpose(); err != nil {
		return nil, errors.Wrap(err, "transposing image tensor")
	}
	data, ok := hwc.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("unsupported tensor dtype %v", hwc.Dtype())
	}
	return append([]float64(nil), data...), nil
}

// ImageFeatures converts img into a feature vector.
func ImageFeatures(img image.Image, o ImageOptions) ([]float64, error) {
	t, err := ImageTensor(img, o)
	if err != nil {
		return nil, err
	}
	return Flatten(t)
}

// Features decodes the png, jpeg or gif file at path into a feature vector.
func Features(path string, o ImageOptions) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return ImageFeatures(img, o)
}
