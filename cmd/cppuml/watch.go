package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/project"
	"github.com/dusk-indust/cppuml/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		f        *renderFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [class]",
		Short: "Re-render a diagram whenever sources change",
		Long: `Render a diagram to the --output file, then watch the project and render it
again after every batch of source changes. Unchanged files are not parsed
again. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.output == "" || f.output == "-" {
				return fmt.Errorf("watch needs an --output file")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := project.NewService(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			render := func(ctx context.Context) error {
				snap, err := a.parseWith(ctx, svc)
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
				return a.writeOutput(f.output, []byte(markup))
			}
			if err := render(ctx); err != nil {
				return err
			}

			walker, err := project.NewWalker(a.rootDir, a.cfg.Extensions, a.cfg.Exclude)
			if err != nil {
				return err
			}
			w, err := watch.New(walker, a.logger, debounce)
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintf(a.stderr, "Watching %s, writing %s\n", a.rootDir, f.output)
			err = w.Run(ctx, func(ctx context.Context, changed []string) {
				log := a.logger.WithField("files", changed)
				if err := render(ctx); err != nil {
					log.WithError(err).Error("Re-render failed")
					return
				}
				log.Info("Re-rendered")
				fmt.Fprintf(a.stderr, "Updated %s (%d files changed)\n", f.output, len(changed))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	f = addRenderFlags(cmd, true)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-rendering")
	return cmd
}

