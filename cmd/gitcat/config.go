package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hairyhenderson/go-gitstream"
	"github.com/hairyhenderson/go-gitstream/gitstore"
	"github.com/hairyhenderson/go-gitstream/internal/env"
	"github.com/hairyhenderson/go-gitstream/store"
	"gopkg.in/yaml.v3"
)

// config is the contents of the optional YAML config file. Flags given on the
// command line take precedence.
type config struct {
	LogLevel string `yaml:"log_level"`
	Tracing  bool   `yaml:"tracing"`

	// LocalSchemes are extra locator schemes served from the local
	// filesystem, like "git" and "file".
	LocalSchemes []string `yaml:"local_schemes"`

	// RemoteSchemes are extra locator schemes served by cloning into
	// memory. The scheme is also the clone transport, so this is mostly
	// useful for cloning "git" locators over the git protocol.
	RemoteSchemes []string `yaml:"remote_schemes"`
}

func defaultConfig() *config {
	return &config{LogLevel: "warn"}
}

// configPath returns flagPath if set, otherwise the path named by
// $GITCAT_CONFIG (or the file named by $GITCAT_CONFIG_FILE).
func configPath(fsys fs.FS, flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	return env.GetenvFS(fsys, "GITCAT_CONFIG")
}

// loadConfig reads the config file at name, resolved against fsys. An empty
// name gives the default config.
func loadConfig(fsys fs.FS, name string) (*config, error) {
	cfg := defaultConfig()
	if name == "" {
		return cfg, nil
	}

	b, err := fs.ReadFile(fsys, strings.TrimPrefix(filepath.ToSlash(name), "/"))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}

	return cfg, nil
}

func (c *config) applyFlags(o *opts) {
	if o.isSet("log-level") {
		c.LogLevel = o.logLevel
	}

	if o.isSet("tracing") {
		c.Tracing = o.tracing
	}
}

// mux returns the default schemes plus any configured ones
func (c *config) mux() (gitstream.Mux, error) {
	for _, l := range c.LocalSchemes {
		for _, r := range c.RemoteSchemes {
			if strings.EqualFold(l, r) {
				return nil, fmt.Errorf("scheme %q is configured as both local and remote", l)
			}
		}
	}

	m := gitstream.DefaultMux()

	if len(c.LocalSchemes) > 0 {
		m.Add(store.NewProvider(gitstore.LocalOpener(), c.LocalSchemes...))
	}

	if len(c.RemoteSchemes) > 0 {
		auth := gitstore.AutoAuthenticator()
		m.Add(store.NewProvider(gitstore.CloneOpener(auth), c.RemoteSchemes...))
	}

	return m, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return l, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
