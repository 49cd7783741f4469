package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌─┐┌┐ ┌┬┐┌─┐┬
  │││├┤ ├┴┐ ││└─┐│
  └┴┘└─┘└─┘─┴┘└─┘┴─┘
`

var (
	stdout = termenv.NewOutput(os.Stdout)
	stderr = termenv.NewOutput(os.Stderr)
)

// configFile is the --config flag shared by all commands.
var configFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webdsl",
		Short: "Build static sites from page scripts",
		Long: `webdsl records HTML pages and their styles from small scripts and
compiles them into static markup files and one stylesheet.

  • Pages are JavaScript files that call html.<tag>() and css.rule()
  • Event handlers are written into each page's script block
  • Links and the stylesheet are relative, so the output works anywhere
  • Live reload development server
  • Publishing to a directory, S3 or Redis`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (default: webdsl.yaml of the project)")

	root.AddCommand(
		buildCmd(),
		serveCmd(),
		verifyCmd(),
		inspectCmd(),
		publishCmd(),
		explainCmd(),
		versionCmd(),
	)
	return root
}

// printBanner prints the webdsl banner.
func printBanner() {
	fmt.Print(stdout.String(banner).Foreground(stdout.Color("6")))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", stdout.String("✓").Foreground(stdout.Color("2")), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", stdout.String("⚠").Foreground(stdout.Color("3")), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", stderr.String("✗").Foreground(stderr.Color("1")), fmt.Sprintf(format, args...))
}

// faint dims text such as file sizes.
func faint(text string) termenv.Style {
	return stdout.String(text).Faint()
}
