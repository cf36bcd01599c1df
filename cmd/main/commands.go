package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CTAG07/sponsorsync/pkg/pipeline"
	"github.com/CTAG07/sponsorsync/pkg/source"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"github.com/CTAG07/sponsorsync/pkg/templating"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// errStale is returned by check when at least one document needs updating.
var errStale = errors.New("sponsors region is stale")

// documentPaths prefers command-line arguments over the configured list.
func (a *app) documentPaths(args []string) ([]string, error) {
	paths := args
	if len(paths) == 0 {
		paths = a.config.Documents
	}
	if len(paths) == 0 {
		return nil, errors.New("no documents given and none configured")
	}
	return paths, nil
}

// process loads sponsors and documents and runs the pipeline over every
// document. Nothing is written.
func (a *app) process(cmd *cobra.Command, args []string) ([]string, []pipeline.Result, error) {
	paths, err := a.documentPaths(args)
	if err != nil {
		return nil, nil, err
	}
	records, err := a.loadRecords(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	renderer, err := templating.NewRenderer(a.logger, a.config.RenderConfig())
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]pipeline.Job, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read document: %w", err)
		}
		jobs = append(jobs, pipeline.Job{Name: path, Document: string(data), Records: records})
	}

	results, err := pipeline.RunAll(cmd.Context(), renderer, jobs, a.config.PipelineOptions())
	if err != nil {
		return nil, nil, err
	}
	return paths, results, nil
}

func newUpdateCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "update [documents...]",
		Short: "Rewrite the sponsors region of each document",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, results, err := a.process(cmd, args)
			if err != nil {
				return err
			}
			for i, res := range results {
				path := paths[i]
				if dryRun {
					if len(results) > 1 {
						if _, err := fmt.Fprintf(a.stdout, "==> %s <==\n", path); err != nil {
							return fmt.Errorf("failed to print document %s: %w", path, err)
						}
					}
					if _, err := io.WriteString(a.stdout, res.Document); err != nil {
						return fmt.Errorf("failed to print document %s: %w", path, err)
					}
					continue
				}
				if !res.Changed {
					a.logger.Info("Document already up to date", "path", path)
					continue
				}
				if err := atomic.WriteFile(path, strings.NewReader(res.Document)); err != nil {
					return fmt.Errorf("failed to write document %s: %w", path, err)
				}
				a.logger.Info("Updated document", "path", path, "tiers", len(res.Groups))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print updated documents to stdout instead of writing them")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [documents...]",
		Short: "Fail if any document's sponsors region is out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, results, err := a.process(cmd, args)
			if err != nil {
				return err
			}
			stale := 0
			for i, res := range results {
				if res.Changed {
					stale++
					a.logger.Warn("Sponsors region is stale", "path", paths[i])
				}
			}
			if stale > 0 {
				return fmt.Errorf("%d of %d documents: %w", stale, len(results), errStale)
			}
			a.logger.Info("All documents up to date", "count", len(results))
			return nil
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the sponsors fragment without touching any document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			groups, err := sponsors.Classify(records, *a.config.Thresholds)
			if err != nil {
				return err
			}
			renderer, err := templating.NewRenderer(a.logger, a.config.RenderConfig())
			if err != nil {
				return err
			}
			return renderer.Execute(a.stdout, groups, a.config.TierOrder)
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var databasePath string
	cmd := &cobra.Command{
		Use:   "import <sponsors-file>",
		Short: "Replace the sponsor database contents with a sponsor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if databasePath == "" {
				databasePath = a.config.SourceConfig().DatabasePath
			}
			if databasePath == "" {
				return errors.New("no database configured: set source_config.database_path or pass --database")
			}

			records, err := source.LoadFile(args[0])
			if err != nil {
				return err
			}
			s, closeStore, err := openStore(databasePath)
			if err != nil {
				return err
			}
			defer closeStore()

			if err = s.ReplaceAll(cmd.Context(), records); err != nil {
				return fmt.Errorf("failed to import sponsors: %w", err)
			}
			a.logger.Info("Imported sponsors", "file", args[0], "database", databasePath, "count", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&databasePath, "database", "", "sponsor database to import into (defaults to source_config.database_path)")
	return cmd
}
