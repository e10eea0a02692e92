package textsource

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Option configures a Source.
type Option func(*options)

type options struct {
	fs           afero.Fs
	separator    rune
	candidates   []rune
	encoding     encoding.Encoding
	encodingName string
	header       bool
	logger       *zap.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{header: true}
	for _, opt := range opts {
		opt(o)
	}
	mergeDefaultOptions(o)
	return o
}

func mergeDefaultOptions(o *options) {
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if len(o.candidates) == 0 {
		o.candidates = []rune{',', ';'}
	}
	if o.encoding == nil {
		o.encoding = unicode.UTF8
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
}

// WithFS sets the file system files are read from. Defaults to the OS file system.
func WithFS(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithSeparator sets the field separator, disabling separator detection.
func WithSeparator(sep rune) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithCandidates sets the separators considered when detecting the separator from the first line.
// Defaults to ',' and ';'.
func WithCandidates(candidates ...rune) Option {
	return func(o *options) {
		o.candidates = candidates
	}
}

// WithEncoding sets the character encoding of files. Defaults to UTF-8.
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

// WithEncodingName sets the character encoding of files by its WHATWG name or label, such as "latin1"
// or "utf-16le". It takes precedence over WithEncoding.
func WithEncodingName(name string) Option {
	return func(o *options) {
		o.encodingName = name
	}
}

// WithHeader sets whether the first row of a file holds column names. Defaults to true.
func WithHeader(header bool) Option {
	return func(o *options) {
		o.header = header
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
