package hsafgrib

import "log/slog"

// Option configures a FileHandler or Reader.
type Option func(*options)

type options struct {
	opener  Opener
	logger  *slog.Logger
	metrics *Metrics
}

func newOptions(opts []Option) options {
	o := options{opener: Grib1Opener, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOpener replaces the GRIB library used to open files.
func WithOpener(op Opener) Option {
	return func(o *options) {
		if op != nil {
			o.opener = op
		}
	}
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records file, message and dataset counts in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}
