package main

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		f      *renderFlags
		format string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "preview [class]",
		Short: "Print a PlantUML server link for a diagram",
		Long: `Encode a diagram for the configured PlantUML server and print the link to
its rendering. With --open the link is opened in the default browser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			snap, err := a.parse(cmd.Context())
			if err != nil {
				return err
			}
			sel, err := f.selection(a.cfg, snap, args)
			if err != nil {
				return err
			}
			markup, err := f.markup(a.cfg, snap, sel)
			if err != nil {
				return err
			}
			url, err := a.cfg.RenderClient().URL(markup, format)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(a.stdout, url); err != nil {
				return err
			}
			if open {
				if err := browser.OpenURL(url); err != nil {
					return fmt.Errorf("open browser: %w", err)
				}
			}
			return nil
		},
	}
	f = addRenderFlags(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", "", "png, svg or txt (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "open the link in the default browser")
	return cmd
}
