// Package codec converts image files between formats. The batch engine
// treats conversion as an opaque operation; everything format-specific
// lives here.
package codec

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Decoder reads one source format.
type Decoder interface {
	Name() string
	// Extensions lists the file extensions this decoder claims, with the
	// leading dot, lower case.
	Extensions() []string
	Decode(r io.Reader) (image.Image, error)
}

// Encoder writes one target format.
type Encoder interface {
	Name() string
	// Extension is the extension given to produced files, with the
	// leading dot.
	Extension() string
	Encode(w io.Writer, img image.Image, opts Options) error
}

// Options controls a single conversion.
type Options struct {
	// Format names the target encoder, e.g. "jpeg".
	Format string
	// Quality applies to lossy targets, 1-100. Zero means the encoder's
	// default.
	Quality int
	// OutputDir receives converted files. Empty writes alongside the
	// source.
	OutputDir string
	// Overwrite allows replacing an existing output file.
	Overwrite bool
}

// Result describes one finished conversion.
type Result struct {
	Source      string `json:"source"`
	OutputPath  string `json:"output_path"`
	InputBytes  int64  `json:"input_bytes"`
	OutputBytes int64  `json:"output_bytes"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Convert decodes src by its extension, re-encodes it to opts.Format and
// writes the output file. It performs no resizing or quality analysis.
func (r *Registry) Convert(ctx context.Context, src string, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	dec, err := r.DecoderFor(filepath.Ext(src))
	if err != nil {
		return Result{}, err
	}
	enc, err := r.Encoder(opts.Format)
	if err != nil {
		return Result{}, err
	}

	in, err := os.Open(src)
	if err != nil {
		return Result{}, errors.Wrap(err, "open source")
	}
	defer in.Close()
	stat, err := in.Stat()
	if err != nil {
		return Result{}, errors.Wrap(err, "stat source")
	}

	img, err := dec.Decode(in)
	if err != nil {
		return Result{}, errors.Wrapf(err, "decode %s", src)
	}

	outPath, err := outputPath(src, enc.Extension(), opts)
	if err != nil {
		return Result{}, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "create output")
	}
	if err := enc.Encode(out, img, opts); err != nil {
		out.Close()
		os.Remove(outPath)
		return Result{}, errors.Wrapf(err, "encode %s", outPath)
	}
	if err := out.Close(); err != nil {
		return Result{}, errors.Wrap(err, "close output")
	}
	outStat, err := os.Stat(outPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "stat output")
	}

	bounds := img.Bounds()
	return Result{
		Source:      src,
		OutputPath:  outPath,
		InputBytes:  stat.Size(),
		OutputBytes: outStat.Size(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

func outputPath(src, ext string, opts Options) (string, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(src)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(dir, base+ext)
	if sameFile(src, out) {
		return "", errors.Errorf("output %s would overwrite its own source", out)
	}
	if !opts.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return "", errors.Errorf("output %s already exists (use overwrite)", out)
		}
	}
	return out, nil
}

func sameFile(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aa == bb
}
