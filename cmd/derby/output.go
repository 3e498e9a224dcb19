package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/season"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(header)
	return tw
}

func formatPurse(amount int64) string {
	return decimal.NewFromInt(amount).StringFixedBank(0)
}

func formatTime(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%05.2f", minutes, seconds-float64(minutes*60))
}

func renderRaces(w io.Writer, title string, races []*models.RaceEvent) {
	tw := newTable(w, title, table.Row{"Week", "ID", "Race", "Grade", "Surface", "Distance", "Location", "Purse"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	for _, r := range races {
		tw.AppendRow(table.Row{r.Week, r.ID, r.Name, r.Grade, r.Surface, r.Distance, r.Location, formatPurse(r.Purse)})
	}
	tw.Render()
}

func renderRoster(w io.Writer, horses []*models.Horse) {
	tw := newTable(w, "", table.Row{"Name", "Team", "Age", "Status", "OVR", "Cond", "Fatigue", "Races", "Wins", "G1", "Earnings"})
	for _, h := range horses {
		status := string(h.Status)
		if h.Status == models.HorseStatusInjured {
			status = fmt.Sprintf("injured (%dw)", h.InjuryWeeks)
		}
		tw.AppendRow(table.Row{
			h.Name(), h.TeamID, h.Age, status, h.CurrentOvr, h.Condition, h.Fatigue,
			h.Career.Races, h.Career.Wins, h.G1Wins(), formatPurse(h.Career.Earnings),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "", "Horses", len(horses)})
	tw.Render()
}

func renderOutcome(w io.Writer, outcome *models.RaceOutcome, commentary bool) {
	title := fmt.Sprintf("%s (%dm %s)", outcome.RaceName, outcome.Distance, outcome.Surface)
	if outcome.Year > 0 {
		title = fmt.Sprintf("Y%d W%d %s", outcome.Year, outcome.Week, title)
	}
	tw := newTable(w, title, table.Row{"#", "Horse", "Strategy", "Time", "Status"})
	for _, r := range outcome.Results {
		tw.AppendRow(table.Row{r.Rank, r.HorseName, r.Strategy, formatTime(r.FinishTime), r.Status})
	}
	if outcome.CutoffTripped {
		tw.AppendFooter(table.Row{"", "Safety cutoff tripped", "", "", ""})
	}
	tw.Render()

	if !commentary {
		return
	}
	for _, entry := range outcome.Log {
		fmt.Fprintf(w, "[%3.0f%%] %s\n", entry.TimePct*100, entry.Message)
	}
}

func renderWeek(w io.Writer, report *season.WeekReport) {
	fmt.Fprintf(w, "Year %d, week %d: %d races run, %d skipped, purse %s paid\n",
		report.Year, report.Week, len(report.Outcomes), len(report.Skipped), formatPurse(report.PursePaid))

	for _, outcome := range report.Outcomes {
		if winner, ok := outcome.Winner(); ok {
			fmt.Fprintf(w, "  %s won by %s in %s\n", outcome.RaceName, winner.HorseName, formatTime(winner.FinishTime))
		}
	}
	for _, id := range report.Skipped {
		fmt.Fprintf(w, "  %s skipped: field too small\n", id)
	}
	for _, inj := range report.Injuries {
		fmt.Fprintf(w, "  %s injured for %d weeks\n", inj.Horse, inj.Weeks)
	}
	for _, ret := range report.Retirements {
		fmt.Fprintf(w, "  %s retired at %d (%s)\n", ret.Horse, ret.Age, ret.Reason)
	}
	if report.TrainingGain > 0 {
		fmt.Fprintf(w, "  training: +%d stat points\n", report.TrainingGain)
	}
}
