package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the class diagram tools over MCP",
		Long: `Run a Model Context Protocol server exposing parse_project, list_classes,
render_diagram, render_selected, get_hierarchy and get_relations.

The server speaks MCP over stdin/stdout unless --http is given. Logs go to
stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := mcptools.NewClassService(a.cfg, a.logger, a.rootDir)
			if err != nil {
				return err
			}
			defer svc.Close()

			if addr != "" {
				a.logger.WithField("addr", addr).Info("Serving MCP over HTTP")
				return mcptools.RunMCPServer(ctx, svc, addr)
			}
			err = mcptools.RunStdio(ctx, svc)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "listen address for the streamable HTTP transport, e.g. :8080")
	return cmd
}
