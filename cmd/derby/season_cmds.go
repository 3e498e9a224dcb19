package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby-sim/internal/factory"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/rng"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		size int
		team string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start the season and generate a roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				state, err := a.engine.Start(ctx)
				if err != nil {
					return err
				}

				if size <= 0 {
					size = a.cfg.Season.RosterSize
				}
				horses, err := generateRoster(ctx, a, team, size)
				if err != nil {
					return err
				}

				a.logger.WithFields(logrus.Fields{
					"year":    state.Year,
					"week":    state.Week,
					"created": len(horses),
					"team":    team,
				}).Info("Season initialised")

				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"season": state, "created": len(horses)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Season at year %d, week %d. Generated %d horses.\n", state.Year, state.Week, len(horses))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "Horses to generate (default season.roster_size)")
	cmd.Flags().StringVar(&team, "team", models.TeamFreeAgent, "Team the generated horses belong to")
	return cmd
}

// generateRoster creates n horses whose names do not clash with stored ones
func generateRoster(ctx context.Context, a *app, team string, n int) ([]*models.Horse, error) {
	if n <= 0 {
		return nil, nil
	}
	existing, err := a.repos.Horse.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list horses: %w", err)
	}
	names := factory.NewNameRegistry()
	for _, h := range existing {
		names.Reserve(h.Name())
	}

	gen := factory.NewGenerator(factory.DefaultConfig(), names, a.streams.For(rng.SubsystemFactory), a.logger)
	horses, err := gen.GenerateRoster(team, n)
	if err != nil {
		return nil, err
	}
	if err := a.repos.Horse.UpsertBatch(ctx, horses); err != nil {
		return nil, fmt.Errorf("failed to store roster: %w", err)
	}
	return horses, nil
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the season position and roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				state, err := a.engine.Current(ctx)
				if errors.Is(err, models.ErrSeasonNotStarted) {
					return fmt.Errorf("%w: run derby init first", err)
				}
				if err != nil {
					return err
				}
				horses, err := a.repos.Horse.List(ctx)
				if err != nil {
					return err
				}

				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{"season": state, "horses": horses})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Year %d, week %d (%s storage)\n", state.Year, state.Week, a.repos.Driver())
				renderRaces(cmd.OutOrStdout(), "This week", a.calendar.RacesInWeek(state.Week))
				renderRoster(cmd.OutOrStdout(), horses)
				return nil
			})
		},
	}
}

func newAdvanceCmd(opts *rootOptions) *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Run the season forward week by week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				reports, err := a.engine.AdvanceWeeks(ctx, weeks)
				// completed weeks are persisted even when the run stops early
				if opts.jsonOutput {
					if jerr := printJSON(cmd.OutOrStdout(), reports); jerr != nil {
						return jerr
					}
				} else {
					for _, report := range reports {
						renderWeek(cmd.OutOrStdout(), report)
					}
				}
				if err != nil {
					return err
				}
				if n := len(reports); n > 0 {
					a.logger.WithFields(logrus.Fields{
						"weeks": n,
						"year":  reports[n-1].Next.Year,
						"week":  reports[n-1].Next.Week,
					}).Info("Season advanced")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 1, "Number of weeks to advance")
	return cmd
}
