package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/verify"
)

func verifyCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check the built output",
		Long: `Record the site again and check the files in the output directory
against it.

Every page must exist, bind only handlers its script block declares and
link the stylesheet exactly once. The stylesheet must hold the recorded
number of rules and keyframes blocks.

Examples:
  webdsl verify
  webdsl verify site --out=public`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(projectDir(args))
			if err != nil {
				return err
			}
			if output != "" {
				p.cfg.Output = output
			}

			ctx, cancel := signalContext()
			defer cancel()

			result, err := p.build(ctx, build.Options{})
			if err != nil {
				return err
			}
			findings := build.CheckDir(result, p.cfg.OutputPath())
			if err := verify.Err(findings); err != nil {
				return err
			}
			success("%d pages and %s verified", len(result.Pages), result.StylesheetFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Output directory (default from webdsl.yaml)")

	return cmd
}
