package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/cppuml/internal/config"
	"github.com/dusk-indust/cppuml/internal/project"
)

// app carries the state shared by every subcommand.
type app struct {
	rootDir string
	verbose bool

	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "cppuml",
		Short: "Generate PlantUML class diagrams from C++ sources",
		Long: `cppuml parses the class declarations of a C++ project, infers inheritance,
composition, aggregation and dependency relationships between them, and
renders PlantUML class diagrams of a class neighbourhood, a chosen set of
classes or the whole project.

Settings are read from .cppuml.yml in the project root and CPPUML_*
environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&a.rootDir, "root", "C", ".", "project root directory")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(
		newListCmd(a),
		newDiagramCmd(a),
		newSelectedCmd(a),
		newAllCmd(a),
		newExportCmd(a),
		newPreviewCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newIndexCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// setup loads the project configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.rootDir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.setupLogger(cfg.Verbose)
	return nil
}

func (a *app) setupLogger(verbose bool) {
	a.logger = logrus.New()
	a.logger.SetOutput(a.stderr)
	a.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a.logger.SetLevel(logrus.WarnLevel)
	if a.verbose || verbose {
		a.logger.SetLevel(logrus.DebugLevel)
	}
}

// parse extracts and analyzes the project once.
func (a *app) parse(ctx context.Context) (*project.Snapshot, error) {
	svc, err := project.NewService(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	defer svc.Close()
	return a.parseWith(ctx, svc)
}

func (a *app) parseWith(ctx context.Context, svc *project.Service) (*project.Snapshot, error) {
	bar := newProgress(a.stderr, !a.verbose)
	snap, err := svc.Parse(ctx, a.rootDir, bar.Update)
	bar.Finish()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", a.rootDir, err)
	}
	a.reportDiagnostics(snap)
	return snap, nil
}

func (a *app) reportDiagnostics(snap *project.Snapshot) {
	if len(snap.Diagnostics) == 0 {
		return
	}
	for _, d := range snap.Diagnostics {
		a.logger.WithField("unit", d.Path).Info(d.String())
	}
	if !a.logger.IsLevelEnabled(logrus.InfoLevel) {
		a.logger.Warnf("%d parse diagnostics, rerun with --verbose to list them", len(snap.Diagnostics))
	}
}

// projectName is used as the document name of exports.
func (a *app) projectName() string {
	abs, err := filepath.Abs(a.rootDir)
	if err != nil {
		return filepath.Base(a.rootDir)
	}
	return filepath.Base(abs)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.WithField("path", path).Info("Wrote output")
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(a.stdout, version)
			return err
		},
	}
}
