package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// buildFlags holds flags for the build command.
type buildFlags struct {
	common  commonFlags
	output  string
	workers int
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	noWatch bool
}

// publishFlags holds flags for the publish command.
type publishFlags struct {
	common  commonFlags
	dir     string
	remote  string
	branch  string
	cname   string
	message string
	workers int
	noBuild bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common commonFlags
	page   bool
}

// initFlags holds flags for the init command.
type initFlags struct {
	force bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and per-page timing")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead
// of printing them.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseError keeps flag.ErrHelp intact and marks anything else as usage.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newFlagSet("build")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel page renders (0 = auto)")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve")
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from serve.addr)")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not reload on docs changes")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string) (*publishFlags, []string, error) {
	f := &publishFlags{}
	fs := newFlagSet("publish")
	fs.StringVarP(&f.dir, "dir", "d", "", "build directory to publish")
	fs.StringVar(&f.remote, "remote", "", "git remote name or URL")
	fs.StringVarP(&f.branch, "branch", "b", "", "hosting branch")
	fs.StringVar(&f.cname, "cname", "", "custom domain written to CNAME")
	fs.StringVarP(&f.message, "message", "m", "", "commit message")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel page renders (0 = auto)")
	fs.BoolVar(&f.noBuild, "no-build", false, "publish the existing build without rebuilding")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render")
	fs.BoolVarP(&f.page, "page", "p", false, "render the full page layout instead of the fragment")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string) (*initFlags, []string, error) {
	f := &initFlags{}
	fs := newFlagSet("init")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing config file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}
