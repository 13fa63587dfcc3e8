package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Render every document into a static site")
	fmt.Fprintln(w, "  serve      Serve documents on demand, reloading on changes")
	fmt.Fprintln(w, "  publish    Commit the build to the hosting branch and push")
	fmt.Fprintln(w, "  render     Render one Markdown file to stdout")
	fmt.Fprintln(w, "  init       Write a starter site.yaml")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docsite help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every site command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: site.yaml if present)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logs and per-page timing")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCSITE_CONFIG, DOCSITE_OUTPUT_DIR, DOCSITE_ADDR, DOCSITE_TIMEOUT,")
	fmt.Fprintln(w, "  DOCSITE_LOG_LEVEL, DOCSITE_LOG_FORMAT, DOCSITE_WORKERS, DOCSITE_GIT_TOKEN")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every document into <output>/docs/<name>/index.html, copy image")
	fmt.Fprintln(w, "dependencies to <output>/static/ and write <output>/static/site.css.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default from paths.output)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel page renders (0 = auto)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve documents at <docsRoute><name>/, rendering each page on request.")
	fmt.Fprintln(w, "Local docs directories are watched and reloaded on change.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default from serve.addr)")
	fmt.Fprintln(w, "      --no-watch            Do not reload on docs changes")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite publish [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, write CNAME, commit the build directory to the hosting")
	fmt.Fprintln(w, "branch and push it. An unchanged build is reported, not an error.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -d, --dir <dir>           Build directory (default from paths.output)")
	fmt.Fprintln(w, "      --remote <s>          Git remote name or URL")
	fmt.Fprintln(w, "  -b, --branch <s>          Hosting branch (default: gh-pages)")
	fmt.Fprintln(w, "      --cname <domain>      Custom domain written to CNAME")
	fmt.Fprintln(w, "  -m, --message <s>         Commit message")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel page renders (0 = auto)")
	fmt.Fprintln(w, "      --no-build            Publish the existing build")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite render <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one Markdown file to stdout as an HTML fragment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -p, --page                Render the full page layout")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docsite init [path] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a starter config to path (default: site.yaml).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing file")
}

// runHelp prints help for a specific command and returns the exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docsite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docsite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
