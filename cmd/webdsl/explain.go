package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Print the documentation of an error code such as E201, or list all
codes when none is given.

Examples:
  webdsl explain
  webdsl explain E104`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var md string
			if len(args) == 0 {
				md = codesMarkdown()
			} else {
				code := strings.ToUpper(args[0])
				tmpl, ok := errors.Lookup(code)
				if !ok {
					return fmt.Errorf("unknown error code %q, run `webdsl explain` for the list of codes", args[0])
				}
				md = explainMarkdown(code, tmpl)
			}

			out, err := renderMarkdown(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}

// explainMarkdown documents one registry entry.
func explainMarkdown(code string, t errors.ErrorTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", code, t.Name)
	fmt.Fprintf(&b, "**%s** (%s)\n\n", t.Message, t.Category)
	if t.Detail != "" {
		b.WriteString(t.Detail + "\n\n")
	}
	if t.Suggestion != "" {
		b.WriteString("## Fix\n\n" + t.Suggestion + "\n\n")
	}
	if t.Example != "" {
		b.WriteString("## Example\n\n```go\n" + t.Example + "\n```\n")
	}
	return b.String()
}

// codesMarkdown lists every registered code.
func codesMarkdown() string {
	var b strings.Builder
	b.WriteString("# Error codes\n\n| Code | Name | Message |\n|---|---|---|\n")
	for _, code := range errors.Codes() {
		t, _ := errors.Lookup(code)
		fmt.Fprintf(&b, "| %s | %s | %s |\n", code, t.Name, t.Message)
	}
	return b.String()
}

// renderMarkdown renders md for the terminal, without styling when stdout
// has no colours.
func renderMarkdown(md string) (string, error) {
	style := glamour.WithAutoStyle()
	if termenv.NewOutput(os.Stdout).Profile == termenv.Ascii {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
