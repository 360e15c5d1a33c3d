package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/spf13/cobra"

	"github.com/LipeSan/worklog-web-app/internal/payroll"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

var periodsFlagDate string

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Show the payroll periods around a date",
	Long: `Show the fortnightly payroll periods within six months of a date, most recent
first, with the period containing that date highlighted.

Examples:
  worklog periods
  worklog periods --date yesterday
  worklog periods --date "3 weeks ago"
  worklog periods --date 2026-01-05`,
	Args: cobra.NoArgs,
	RunE: runPeriods,
}

func init() {
	periodsCmd.Flags().StringVarP(&periodsFlagDate, "date", "d", "", "Reference date (natural language accepted)")
	rootCmd.AddCommand(periodsCmd)
}

func runPeriods(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	day, err := parseDay(periodsFlagDate, time.Now().In(loc))
	if err != nil {
		return err
	}

	periods := payroll.Generate(day)
	renderPeriods(cmd.OutOrStdout(), periods, payroll.FindCurrent(periods, day), day)
	return nil
}

// parseDay resolves a natural language date relative to now. Empty input is now.
func parseDay(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "today") {
		return now, nil
	}
	if d, err := timecalc.ParseDate(input); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	result, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime: now,
	}, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not understand date %q", input)
	}
	return result.Time.In(now.Location()), nil
}

func renderPeriods(w io.Writer, periods []payroll.Period, currentID string, day time.Time) {
	fmt.Fprintln(w, titleStyle.Render("Payroll periods around "+timecalc.FormatDate(day)))
	for _, p := range periods {
		line := fmt.Sprintf("%-10s %s  (%s → %s)", p.ID, p.Label, timecalc.FormatDate(p.StartDate), timecalc.FormatDate(p.EndDate))
		if p.ID == currentID {
			fmt.Fprintln(w, currentStyle.Render("▶ "+line))
			continue
		}
		fmt.Fprintln(w, mutedStyle.Render("  "+line))
	}
}
