/*
gitcat reads files and directories out of git branches, addressing them with
locators of the form scheme://<repository>.git/<branch>/<path>.

Repositories are opened with the default schemes ("git" and "file" for local
repositories, "http", "https", and "ssh" for remote ones, which are cloned into
memory). More schemes can be mapped in the config file.

# Usage

	usage: gitcat <flags> <command> ...
	flags:

	  -base string
	    	Base locator that command arguments are relative to
	  -config string
	    	Path to a YAML config file (default $GITCAT_CONFIG)
	  -log-level string
	    	Log level (debug, info, warn, error)
	  -tracing
	    	Enable tracing with OTel

	commands:

	  files [PATH]
	    	List every file below PATH, recursively.
	  ls [DIR]
	    	List the entries in DIR. Defaults to the base locator.
	  cat [FILE]...
	    	Concatenate FILE(s) to standard output.
	  stat [-json] [FILE]
	    	Print the stat record of FILE to standard output.

# Config file

	log_level: debug
	tracing: true
	local_schemes: [repo]
	remote_schemes: [git]

# Examples

	$ gitcat -base=file:///srv/git/app.git/main/ files src
	app.js
	lib/util.js

	$ gitcat -base=https://github.com/git-fixtures/basic.git/master/ ls json
	 -r--r--r-- 212.7KiB 0001-01-01 00:00 long.json
	 -r--r--r--     706B 0001-01-01 00:00 short.json

	$ gitcat cat file:///srv/git/app.git/v1.2.0/README.md
	hello world
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/hairyhenderson/go-gitstream"
	"github.com/hairyhenderson/go-gitstream/gitfs"
	"go.opentelemetry.io/otel/trace"
)

type opts struct {
	set        map[string]bool
	base       string
	configPath string
	logLevel   string
	tracing    bool
}

func (o *opts) isSet(name string) bool {
	return o.set[name]
}

func parseFlags(args []string) (*opts, []string) {
	prog := args[0]

	fs := flag.NewFlagSet("root", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `usage: %s <flags> <command> ...
flags:
`, prog)
		fs.PrintDefaults()
		fmt.Fprint(fs.Output(), `
commands:
  files [PATH]
    	List every file below PATH, recursively.
  ls [DIR]
    	List the entries in DIR. Defaults to the base locator.
  cat [FILE]...
    	Concatenate FILE(s) to standard output.
  stat [-json] [FILE]
    	Print the stat record of FILE to standard output.
`)
	}

	o := opts{set: map[string]bool{}}
	fs.StringVar(&o.base, "base", "", "Base locator that command arguments are relative to")
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file (default $GITCAT_CONFIG)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&o.tracing, "tracing", false, "Enable tracing with OTel")

	_ = fs.Parse(args[1:])

	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	return &o, fs.Args()
}

func main() {
	o, cmdArgs := parseFlags(os.Args)
	if err := run(o, cmdArgs); err != nil {
		slog.Error("exiting with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(o *opts, cmdArgs []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	if len(cmdArgs) == 0 {
		return errors.New("no command specified")
	}

	rootFS := os.DirFS("/")

	cfgPath := configPath(rootFS, o.configPath)
	if cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}

		cfgPath = abs
	}

	cfg, err := loadConfig(rootFS, cfgPath)
	if err != nil {
		return err
	}

	cfg.applyFlags(o)

	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	mux, err := cfg.mux()
	if err != nil {
		return err
	}

	driverOpts := []gitstream.Option{gitstream.WithMux(mux), gitstream.WithLogger(logger)}

	subCmd := cmdArgs[0]

	if cfg.Tracing {
		tp, err := initTracing(context.WithoutCancel(ctx))
		if err != nil {
			return fmt.Errorf("init trace exporter: %w", err)
		}

		defer func() { _ = shutdownTracing(context.WithoutCancel(ctx), tp) }()

		var span trace.Span

		ctx, span = tp.Tracer("gitcat").Start(ctx, subCmd)
		defer span.End()

		driverOpts = append(driverOpts, gitstream.WithTracerProvider(tp))
	}

	return cmd(ctx, gitstream.New(driverOpts...), o.base, cmdArgs, os.Stdout)
}

func cmd(ctx context.Context, d *gitstream.Driver, base string, cmdArgs []string, w io.Writer) error {
	subCmd := cmdArgs[0]

	switch subCmd {
	case "files":
		if len(cmdArgs) == 1 {
			cmdArgs = append(cmdArgs, ".")
		}

		return files(ctx, d, locate(base, cmdArgs[1]), w)
	case "ls":
		root, dir := base, "."

		switch {
		case len(cmdArgs) > 1 && root == "":
			root = cmdArgs[1]
		case len(cmdArgs) > 1:
			dir = cmdArgs[1]
		case root == "":
			return errors.New("no locator specified")
		}

		return fsLs(ctx, d, root, dir, w)
	case "cat":
		if len(cmdArgs) == 1 {
			return errors.New("no files specified")
		}

		names := make([]string, 0, len(cmdArgs)-1)
		for _, name := range cmdArgs[1:] {
			names = append(names, locate(base, name))
		}

		return cat(ctx, d, names, w)
	case "stat":
		sfs := flag.NewFlagSet("stat", flag.ContinueOnError)
		sfs.SetOutput(io.Discard)
		asJSON := sfs.Bool("json", false, "Print the record as JSON")

		if err := sfs.Parse(cmdArgs[1:]); err != nil {
			return fmt.Errorf("stat: %w", err)
		}

		name := "."
		if sfs.NArg() > 0 {
			name = sfs.Arg(0)
		}

		return stat(d, locate(base, name), *asJSON, w)
	}

	return fmt.Errorf("unknown command: %s", subCmd)
}

// locate joins name onto the base locator. With no base, name must be a
// complete locator.
func locate(base, name string) string {
	if base == "" {
		return name
	}

	if name == "" || name == "." {
		return base
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(name, "/")
}

func files(ctx context.Context, d *gitstream.Driver, name string, w io.Writer) error {
	c, err := d.OpenDir(ctx, name)
	if err != nil {
		return err
	}
	defer c.Close()

	for {
		p, err := c.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		fmt.Fprintln(w, p)
	}
}

func fsLs(ctx context.Context, d *gitstream.Driver, root, dir string, w io.Writer) error {
	fsys, err := gitfs.FromDriver(d, root)
	if err != nil {
		return err
	}

	fsys = gitstream.WithContextFS(ctx, fsys)

	des, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}

	return ls(des, w)
}

func ls(des []fs.DirEntry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	defer tw.Flush()

	for _, d := range des {
		fi, err := d.Info()
		if err != nil {
			return err
		}

		sz := ""
		if !fi.IsDir() {
			sz = formatSize(fi.Size())
		}

		mtime := fi.ModTime().Format("2006-01-02 15:04")
		fmt.Fprintf(tw, "%s\t%s\t%s\t %s\n", fi.Mode(), sz, mtime, d.Name())
	}

	return nil
}

func cat(ctx context.Context, d *gitstream.Driver, names []string, w io.Writer) error {
	for _, name := range names {
		s, err := d.OpenFile(ctx, name, "rb")
		if err != nil {
			return err
		}

		if _, err := io.Copy(w, s); err != nil {
			_ = s.Close()

			return err
		}

		_ = s.Close()
	}

	return nil
}

//nolint:gochecknoglobals
var statFields = [13]string{
	"dev", "ino", "mode", "nlink", "uid", "gid", "rdev",
	"size", "atime", "mtime", "ctime", "blksize", "blocks",
}

func stat(d *gitstream.Driver, name string, asJSON bool, w io.Writer) error {
	m, err := d.URLStat(name)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(w).Encode(m)
	}

	fmt.Fprintf(w, "%s:\n", name)

	for i, v := range m.Indexed() {
		if statFields[i] == "mode" {
			fmt.Fprintf(w, "\t%-9s%#o (%s)\n", "mode:", v, m.FileMode())

			continue
		}

		fmt.Fprintf(w, "\t%-9s%d\n", statFields[i]+":", v)
	}

	fmt.Fprintf(w, "\t%-9s%s\n", "modtime:", m.ModTime().Format(time.RFC3339))

	return nil
}

func formatSize(size int64) string {
	switch {
	case size <= 1024:
		return fmt.Sprintf("%dB", size)
	case size <= 1024*1024:
		return fmt.Sprintf("%.1fKiB", float64(size)/1024)
	case size <= 1024*1024*1024:
		return fmt.Sprintf("%.1fMiB", float64(size)/1024/1024)
	default:
		return fmt.Sprintf("%.1fGiB", float64(size)/1024/1024/1024)
	}
}
