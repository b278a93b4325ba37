package xlquery

import (
	"io"
	"log/slog"
)

// Options holds configuration for the Querier.
type Options struct {
	openStore   StoreOpener
	logger      *slog.Logger
	marker      string
	separator   string
	matchPolicy MatchPolicy
}

func defaultOptions() *Options {
	return &Options{
		openStore:   OpenStore,
		logger:      discardLogger(),
		marker:      DefaultMarker,
		separator:   ",",
		matchPolicy: FirstMatchOnly,
	}
}

// Option configures the Querier.
type Option func(*Options)

// WithStoreOpener replaces how a workbook path is opened (default: OpenStore).
func WithStoreOpener(fn StoreOpener) Option {
	return func(o *Options) { o.openStore = fn }
}

// WithLogger sets the logger operations trace to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRowMarker sets the prefix marking explicit references (default: "#").
func WithRowMarker(marker string) Option {
	return func(o *Options) { o.marker = marker }
}

// WithListSeparator sets the separator of column, value and update lists (default: ",").
func WithListSeparator(sep string) Option {
	return func(o *Options) { o.separator = sep }
}

// WithMatchPolicy names the filter match policy. FirstMatchOnly is the only one.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(o *Options) { o.matchPolicy = p }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
