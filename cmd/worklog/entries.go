package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LipeSan/worklog-web-app/internal/client"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

// Entries command flags.
var (
	addFlagDate        string
	addFlagProject     string
	addFlagStart       string
	addFlagEnd         string
	addFlagDescription string

	listFlagFrom    string
	listFlagTo      string
	listFlagProject string
	listFlagLimit   int
	listFlagOffset  int
)

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"e"},
	Short:   "Log and list work sessions on a worklog server",
}

var entriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a work session",
	Long: `Log a work session. Hours and the amount owed are computed by the server
from the start and end times and your current hourly rate.

Examples:
  worklog entries add --project Website --start 09:00 --end 12:30
  worklog entries add --date yesterday --project Website --start 13:00 --end 17:00 -m "API review"`,
	Args: cobra.NoArgs,
	RunE: runEntriesAdd,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged work sessions",
	Long: `List logged work sessions, newest first. Totals cover every matching session,
not just the page shown.

Examples:
  worklog entries list
  worklog entries list --from "2 weeks ago" --project web`,
	Args: cobra.NoArgs,
	RunE: runEntriesList,
}

func init() {
	entriesAddCmd.Flags().StringVarP(&addFlagDate, "date", "d", "", "Work date (default today, natural language accepted)")
	entriesAddCmd.Flags().StringVarP(&addFlagProject, "project", "p", "", "Project name")
	entriesAddCmd.Flags().StringVarP(&addFlagStart, "start", "s", "", "Start time (HH:MM)")
	entriesAddCmd.Flags().StringVarP(&addFlagEnd, "end", "e", "", "End time (HH:MM)")
	entriesAddCmd.Flags().StringVarP(&addFlagDescription, "description", "m", "", "What was done")

	entriesListCmd.Flags().StringVar(&listFlagFrom, "from", "", "First work date to include")
	entriesListCmd.Flags().StringVar(&listFlagTo, "to", "", "Last work date to include")
	entriesListCmd.Flags().StringVarP(&listFlagProject, "project", "p", "", "Project name filter (substring)")
	entriesListCmd.Flags().IntVarP(&listFlagLimit, "limit", "n", 0, "Page size")
	entriesListCmd.Flags().IntVar(&listFlagOffset, "offset", 0, "Entries to skip")

	entriesCmd.AddCommand(entriesAddCmd, entriesListCmd)
	rootCmd.AddCommand(entriesCmd)
}

func runEntriesAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}
	day, err := parseDay(addFlagDate, time.Now().In(loc))
	if err != nil {
		return err
	}

	payload := models.EntryPayload{
		Date:      timecalc.FormatDate(day),
		Project:   addFlagProject,
		StartTime: addFlagStart,
		EndTime:   addFlagEnd,
	}
	if d := strings.TrimSpace(addFlagDescription); d != "" {
		payload.Description = &d
	}

	c, err := newClient(cfg, true)
	if err != nil {
		return err
	}
	entry, err := c.CreateEntry(context.Background(), payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Logged %sh on %s (%s) at $%s/h = %s\n",
		currentStyle.Render("✓"),
		entry.Hours.String(),
		entry.Project,
		entry.Date,
		money(entry.HourlyRate),
		amountStyle.Render("$"+money(entry.TotalAmount)),
	)
	return nil
}

func runEntriesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	q := client.ListQuery{Project: listFlagProject, Limit: listFlagLimit, Offset: listFlagOffset}
	now := time.Now().In(loc)
	if listFlagFrom != "" {
		from, err := parseDay(listFlagFrom, now)
		if err != nil {
			return err
		}
		q.StartDate = timecalc.FormatDate(from)
	}
	if listFlagTo != "" {
		to, err := parseDay(listFlagTo, now)
		if err != nil {
			return err
		}
		q.EndDate = timecalc.FormatDate(to)
	}

	c, err := newClient(cfg, true)
	if err != nil {
		return err
	}
	result, err := c.ListEntries(context.Background(), q)
	if err != nil {
		return err
	}

	renderEntries(cmd.OutOrStdout(), result)
	return nil
}

func renderEntries(w io.Writer, result *models.ListResult) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No work sessions found"))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-10s  %-24s  %-11s  %6s  %10s", "Date", "Project", "Time", "Hours", "Amount")))
	for _, e := range result.Entries {
		fmt.Fprintf(w, "%-10s  %-24s  %-11s  %6s  %10s\n",
			e.Date,
			truncate(e.Project, 24),
			e.StartTime+"-"+e.EndTime,
			e.Hours.StringFixed(2),
			"$"+money(e.TotalAmount),
		)
	}

	p := result.Pagination
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d sessions", p.Page, max(p.TotalPages, 1), p.Total)))
	fmt.Fprintf(w, "Total: %sh  %s\n",
		result.Summary.TotalHours.StringFixed(2),
		amountStyle.Render("$"+money(result.Summary.TotalAmount)),
	)
}

func money(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.InexactFloat64(), 2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
