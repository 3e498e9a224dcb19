package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby-sim/internal/metrics"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/projection"
	"github.com/yourusername/derby-sim/internal/rating"
	"github.com/yourusername/derby-sim/internal/season"
)

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List the race calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithSecrets(cmd.Context(), opts)
			if err != nil {
				return err
			}
			cal, err := loadCalendar(cfg.Season.CalendarPath)
			if err != nil {
				return err
			}

			var races []*models.RaceEvent
			if week > 0 {
				races = cal.RacesInWeek(week)
			} else {
				all := cal.Races()
				for i := range all {
					races = append(races, &all[i])
				}
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), races)
			}
			renderRaces(cmd.OutOrStdout(), "", races)
			return nil
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "Only list races in this week")
	return cmd
}

func newAllocateCmd(opts *rootOptions) *cobra.Command {
	var year, week int
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Preview matchmaking for a week without running races",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				year, week, err := a.resolveWeek(ctx, year, week)
				if err != nil {
					return err
				}
				races := a.calendar.RacesInWeek(week)
				if len(races) == 0 {
					return fmt.Errorf("week %d: %w", week, models.ErrEmptyCalendarWeek)
				}
				roster, err := a.activeRoster(ctx)
				if err != nil {
					return err
				}

				allocations := a.allocator.Allocate(roster, races, week, year)
				excluded := make(map[string]int)
				for _, alloc := range allocations {
					excluded[string(alloc.Race.Grade)] += len(alloc.Excluded)
				}
				metrics.RecordAllocation(excluded)

				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), allocations)
				}
				minField := season.FromConfig(a.cfg).MinFieldToRun
				for _, r := range races {
					renderAllocation(cmd, allocations[r.ID], minField)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Season year (default current)")
	cmd.Flags().IntVar(&week, "week", 0, "Calendar week (default current)")
	return cmd
}

func renderAllocation(cmd *cobra.Command, alloc *models.Allocation, minField int) {
	ev := alloc.Race
	title := fmt.Sprintf("%s %s, %dm %s, %d entered, %d excluded", ev.Grade, ev.Name, ev.Distance, ev.Surface, len(alloc.Field), len(alloc.Excluded))
	if !alloc.CanRun(minField) {
		title += " (will not run)"
	}

	ranked := rankByRating(alloc.Field, ev)
	tw := newTable(cmd.OutOrStdout(), title, table.Row{"#", "Horse", "Age", "OVR", "Rating", "Odds", "Cond"})
	for i, h := range ranked {
		tw.AppendRow(table.Row{
			i + 1, h.Name(), h.Age, h.CurrentOvr,
			rating.CalculateRaceRating(h, ev), rating.CalculateOdds(h, alloc.Field, ev), h.Condition,
		})
	}
	tw.Render()
}

func rankByRating(field []*models.Horse, ev *models.RaceEvent) []*models.Horse {
	ranked := append([]*models.Horse(nil), field...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rating.CalculateRaceRating(ranked[i], ev) > rating.CalculateRaceRating(ranked[j], ev)
	})
	return ranked
}

// fieldFor allocates the stored roster against a single race in its calendar week
func fieldFor(ctx context.Context, a *app, key string, year int) (*models.RaceEvent, []*models.Horse, error) {
	ev, err := a.calendar.Lookup(key)
	if err != nil {
		return nil, nil, err
	}
	if year <= 0 {
		if year, _, err = a.resolveWeek(ctx, 0, ev.Week); err != nil {
			return nil, nil, err
		}
	}
	roster, err := a.activeRoster(ctx)
	if err != nil {
		return nil, nil, err
	}

	alloc := a.allocator.Allocate(roster, []*models.RaceEvent{ev}, ev.Week, year)[ev.ID]
	minField := season.FromConfig(a.cfg).MinFieldToRun
	if !alloc.CanRun(minField) {
		return nil, nil, models.NewInvalidRaceError("%s drew %d entrants, at least %d needed", ev.Name, len(alloc.Field), minField)
	}
	return ev, alloc.Field, nil
}

func newRaceCmd(opts *rootOptions) *cobra.Command {
	var (
		year       int
		commentary bool
	)
	cmd := &cobra.Command{
		Use:   "race <race id or name>",
		Short: "Simulate one race with its allocated field without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				ev, field, err := fieldFor(ctx, a, args[0], year)
				if err != nil {
					return err
				}
				outcome, err := a.simulator.SimulateEvent(ev, field)
				if err != nil {
					return err
				}

				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), outcome)
				}
				renderOutcome(cmd.OutOrStdout(), outcome, commentary)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Season year used for entry checks (default current)")
	cmd.Flags().BoolVar(&commentary, "commentary", true, "Print the race commentary")
	return cmd
}

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var (
		year       int
		iterations int
	)
	cmd := &cobra.Command{
		Use:   "project <race id or name>",
		Short: "Estimate win and place chances by repeated simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				ev, field, err := fieldFor(ctx, a, args[0], year)
				if err != nil {
					return err
				}

				result, err := projection.Run(ctx, a.simulator, ev, field, projection.Config{
					Iterations: iterations,
					Seed:       a.streams.Seed(),
				})
				switch {
				case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
					metrics.RecordProjection("cancelled")
					return err
				case err != nil:
					metrics.RecordProjection("failure")
					return err
				}
				metrics.RecordProjection("success")

				a.logger.WithFields(logrus.Fields{
					"race_id":    ev.ID,
					"iterations": result.Iterations,
					"field_size": len(field),
				}).Info("Projection completed")

				if opts.jsonOutput {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), result.JSON())
					return err
				}
				renderProjection(cmd, result)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Season year used for entry checks (default current)")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", projection.DefaultIterations, "Simulations to run")
	return cmd
}

func renderProjection(cmd *cobra.Command, result *projection.Result) {
	title := fmt.Sprintf("%s, %d runs", result.RaceName, result.Iterations)
	tw := newTable(cmd.OutOrStdout(), title, table.Row{"Horse", "Win %", "Top 3 %", "DNF %", "Mean time", "Mean rank", "Fair odds"})
	for _, h := range result.Horses {
		tw.AppendRow(table.Row{
			h.HorseName,
			fmt.Sprintf("%.1f", h.WinPct*100),
			fmt.Sprintf("%.1f", h.Top3Pct*100),
			fmt.Sprintf("%.1f", h.DNFPct*100),
			formatTime(h.MeanTime),
			fmt.Sprintf("%.2f", h.MeanRank),
			h.FairOdds,
		})
	}
	tw.Render()
}
