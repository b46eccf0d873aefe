package codec

import (
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const defaultJPEGQuality = 85

// Builtin returns a registry with every codec this build ships: png, jpeg,
// gif, bmp and tiff both ways, webp decode-only (the x/image webp package
// has no encoder).
func Builtin() *Registry {
	r := NewRegistry()
	for _, c := range []interface {
		Decoder
		Encoder
	}{pngCodec{}, jpegCodec{}, gifCodec{}, bmpCodec{}, tiffCodec{}} {
		r.RegisterDecoder(c)
		r.RegisterEncoder(c)
	}
	r.RegisterDecoder(webpDecoder{})
	return r
}

type pngCodec struct{}

func (pngCodec) Name() string                            { return "png" }
func (pngCodec) Extensions() []string                    { return []string{".png"} }
func (pngCodec) Extension() string                       { return ".png" }
func (pngCodec) Decode(r io.Reader) (image.Image, error) { return png.Decode(r) }
func (pngCodec) Encode(w io.Writer, img image.Image, _ Options) error {
	return png.Encode(w, img)
}

type jpegCodec struct{}

func (jpegCodec) Name() string                            { return "jpeg" }
func (jpegCodec) Extensions() []string                    { return []string{".jpg", ".jpeg"} }
func (jpegCodec) Extension() string                       { return ".jpg" }
func (jpegCodec) Decode(r io.Reader) (image.Image, error) { return jpeg.Decode(r) }
func (jpegCodec) Encode(w io.Writer, img image.Image, opts Options) error {
	q := opts.Quality
	if q <= 0 || q > 100 {
		q = defaultJPEGQuality
	}
	// JPEG has no alpha channel; flatten onto white first.
	if _, ok := img.(*image.NRGBA); ok {
		img = flatten(img)
	} else if _, ok := img.(*image.RGBA); ok {
		img = flatten(img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}

type gifCodec struct{}

func (gifCodec) Name() string                            { return "gif" }
func (gifCodec) Extensions() []string                    { return []string{".gif"} }
func (gifCodec) Extension() string                       { return ".gif" }
func (gifCodec) Decode(r io.Reader) (image.Image, error) { return gif.Decode(r) }
func (gifCodec) Encode(w io.Writer, img image.Image, _ Options) error {
	return gif.Encode(w, img, nil)
}

type bmpCodec struct{}

func (bmpCodec) Name() string                            { return "bmp" }
func (bmpCodec) Extensions() []string                    { return []string{".bmp"} }
func (bmpCodec) Extension() string                       { return ".bmp" }
func (bmpCodec) Decode(r io.Reader) (image.Image, error) { return bmp.Decode(r) }
func (bmpCodec) Encode(w io.Writer, img image.Image, _ Options) error {
	return bmp.Encode(w, img)
}

type tiffCodec struct{}

func (tiffCodec) Name() string                            { return "tiff" }
func (tiffCodec) Extensions() []string                    { return []string{".tif", ".tiff"} }
func (tiffCodec) Extension() string                       { return ".tiff" }
func (tiffCodec) Decode(r io.Reader) (image.Image, error) { return tiff.Decode(r) }
func (tiffCodec) Encode(w io.Writer, img image.Image, _ Options) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

type webpDecoder struct{}

func (webpDecoder) Name() string                            { return "webp" }
func (webpDecoder) Extensions() []string                    { return []string{".webp"} }
func (webpDecoder) Decode(r io.Reader) (image.Image, error) { return webp.Decode(r) }

func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
