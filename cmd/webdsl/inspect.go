package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/script"
	"github.com/vango-dev/webdsl/pkg/dom"
	"github.com/vango-dev/webdsl/pkg/render"
	"github.com/vango-dev/webdsl/pkg/site"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <script>",
		Short: "Show what a page script records",
		Long: `Run one page script and print the recorded element tree, the event
callbacks and the stylesheet it contributes.

Examples:
  webdsl inspect pages/index.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := openProject(filepath.Dir(path))
			if err != nil {
				return err
			}

			root := p.cfg.PagesPath()
			if rel, err := filepath.Rel(root, path); err != nil || strings.HasPrefix(rel, "..") {
				root = filepath.Dir(path)
			}
			page, err := script.NewPage(p.host(), root, path)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			sc := site.NewContext(page.Name())
			sc.Logger = p.logger
			if err := page.Record(ctx, sc); err != nil {
				return err
			}
			printInspection(page.Name(), sc)
			return nil
		},
	}
	return cmd
}

func printInspection(name string, sc *site.Context) {
	fmt.Printf("%s %s\n\n", stdout.String("page").Bold(), name)
	fmt.Println(dom.Dump(sc.HTML.Document()))

	if scripts := sc.HTML.EventScripts(); len(scripts) > 0 {
		fmt.Println(stdout.String("callbacks").Bold())
		for _, cb := range scripts {
			fmt.Printf("  %s()\n", cb.Name())
		}
		fmt.Println()
	}

	fmt.Println(stdout.String("stylesheet").Bold())
	if text := render.SheetText(sc.CSS); text != "" {
		fmt.Println(text)
	} else {
		fmt.Println(faint("  (empty)"))
	}
}
