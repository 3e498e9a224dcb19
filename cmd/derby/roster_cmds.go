package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby-sim/internal/datasource"
	"github.com/yourusername/derby-sim/internal/models"
)

func newRosterCmd(opts *rootOptions) *cobra.Command {
	var (
		team        string
		withRetired bool
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List stored horses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				var (
					horses []*models.Horse
					err    error
				)
				switch {
				case team != "":
					horses, err = a.repos.Horse.ListByTeam(ctx, team)
				case withRetired:
					horses, err = a.repos.Horse.List(ctx)
				default:
					horses, err = a.activeRoster(ctx)
				}
				if err != nil {
					return err
				}

				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), horses)
				}
				renderRoster(cmd.OutOrStdout(), horses)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "Only list horses of this team")
	cmd.Flags().BoolVar(&withRetired, "all", false, "Include retired horses")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		file string
		url  string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import horses from a roster file or HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				srcCfg := a.cfg.RosterSource
				switch {
				case file != "":
					srcCfg.Type, srcCfg.Path = string(datasource.FileSourceType), file
				case url != "":
					srcCfg.Type, srcCfg.URL = string(datasource.HTTPSourceType), url
				}

				source, err := datasource.NewRosterSource(srcCfg, a.logger)
				if err != nil {
					return err
				}
				horses, err := source.FetchRoster(ctx)
				if err != nil {
					return fmt.Errorf("import from %s: %w", source.Name(), err)
				}
				if err := a.repos.Horse.UpsertBatch(ctx, horses); err != nil {
					return fmt.Errorf("failed to store imported horses: %w", err)
				}

				a.logger.WithFields(logrus.Fields{
					"source": source.Name(),
					"horses": len(horses),
				}).Info("Roster imported")
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d horses from %s\n", len(horses), source.Name())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Roster YAML or JSON file (overrides roster_source)")
	cmd.Flags().StringVar(&url, "url", "", "Roster HTTP endpoint (overrides roster_source)")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}
