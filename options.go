package gitstream

import (
	"log/slog"

	"github.com/hairyhenderson/go-gitstream/store"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Driver.
type Option interface {
	apply(*config)
}

type config struct {
	openers Mux
	logger  *slog.Logger
	tp      trace.TracerProvider
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithOpener registers o for the given locator scheme, replacing the default
// opener for that scheme if there is one.
func WithOpener(scheme string, o store.Opener) Option {
	return optionFunc(func(cfg *config) {
		if o != nil {
			cfg.openers.Add(store.NewProvider(o, scheme))
		}
	})
}

// WithProvider registers p for all of its schemes.
func WithProvider(p store.Provider) Option {
	return optionFunc(func(cfg *config) {
		if p != nil {
			cfg.openers.Add(p)
		}
	})
}

// WithMux replaces all registered openers with m. Options given after
// WithMux add to m.
func WithMux(m Mux) Option {
	return optionFunc(func(cfg *config) {
		if m != nil {
			cfg.openers = m
		}
	})
}

// WithLogger sets the logger used for debug logging. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	})
}

// WithTracerProvider specifies a tracer provider to use for creating a tracer.
// If none is specified, the global provider is used (see [otel.GetTracerProvider]).
func WithTracerProvider(provider trace.TracerProvider) Option {
	return optionFunc(func(cfg *config) {
		if provider != nil {
			cfg.tp = provider
		}
	})
}
