package codec

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps file extensions to decoders and format names to encoders.
type Registry struct {
	decoders map[string]Decoder
	encoders map[string]Encoder
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: map[string]Decoder{},
		encoders: map[string]Encoder{},
	}
}

func (r *Registry) RegisterDecoder(d Decoder) {
	for _, ext := range d.Extensions() {
		r.decoders[strings.ToLower(ext)] = d
	}
}

func (r *Registry) RegisterEncoder(e Encoder) {
	r.encoders[e.Name()] = e
}

// DecoderFor resolves a decoder by file extension (case-insensitive).
func (r *Registry) DecoderFor(ext string) (Decoder, error) {
	d, ok := r.decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for %q", ext)
	}
	return d, nil
}

// Encoder resolves an encoder by target format name.
func (r *Registry) Encoder(format string) (Encoder, error) {
	e, ok := r.encoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no encoder registered for format %q", format)
	}
	return e, nil
}

// Extensions returns every decodable extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Formats returns every encodable format name, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
