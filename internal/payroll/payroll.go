// Package payroll partitions the calendar into fortnightly payroll periods anchored to
// the first Monday of the year, and compares summaries between consecutive periods.
// Periods are pure functions of "today" and are never persisted.
package payroll

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

const (
	// PeriodDays is the length of one payroll period.
	PeriodDays = 14
	// FirstOffset and LastOffset bound the blocks generated around the anchor.
	FirstOffset = -10
	LastOffset  = 36
	// WindowMonths is how far before and after today periods are materialized.
	WindowMonths = 6

	labelBase   = 1 - FirstOffset
	labelLayout = "02/01/06"
)

// Period is one inclusive 14-day window.
type Period struct {
	ID        string
	Number    int
	Label     string
	StartDate time.Time
	EndDate   time.Time
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string `json:"id"`
		Number    int    `json:"number"`
		Label     string `json:"label"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{p.ID, p.Number, p.Label, timecalc.FormatDate(p.StartDate), timecalc.FormatDate(p.EndDate)})
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Number    int    `json:"number"`
		Label     string `json:"label"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := timecalc.ParseDate(raw.StartDate)
	if err != nil {
		return fmt.Errorf("invalid period start date: %w", err)
	}
	end, err := timecalc.ParseDate(raw.EndDate)
	if err != nil {
		return fmt.Errorf("invalid period end date: %w", err)
	}

	*p = Period{ID: raw.ID, Number: raw.Number, Label: raw.Label, StartDate: start, EndDate: end}
	return nil
}

// Contains reports whether day falls within [StartDate 00:00, EndDate 23:59:59].
func (p Period) Contains(day time.Time) bool {
	day = timecalc.StartOfDay(day)
	return !day.Before(timecalc.StartOfDay(p.StartDate)) && !day.After(timecalc.EndOfDay(p.EndDate))
}

// Anchor returns the first Monday on or after January 1st of year.
func Anchor(year int, loc *time.Location) time.Time {
	return timecalc.FirstMondayOnOrAfter(time.Date(year, time.January, 1, 0, 0, 0, 0, loc))
}

// Generate returns the periods intersecting [today-6 months, today+6 months],
// most recent first. The result depends only on today's date.
func Generate(today time.Time) []Period {
	day := timecalc.StartOfDay(today)
	anchor := Anchor(day.Year(), day.Location())
	windowStart := day.AddDate(0, -WindowMonths, 0)
	windowEnd := day.AddDate(0, WindowMonths, 0)

	periods := make([]Period, 0, LastOffset-FirstOffset+1)
	for offset := LastOffset; offset >= FirstOffset; offset-- {
		start := anchor.AddDate(0, 0, offset*PeriodDays)
		end := start.AddDate(0, 0, PeriodDays-1)
		if end.Before(windowStart) || start.After(windowEnd) {
			continue
		}

		number := offset + labelBase
		periods = append(periods, Period{
			ID:        fmt.Sprintf("period-%d", number),
			Number:    number,
			Label:     fmt.Sprintf("Period %d (%s - %s)", number, start.Format(labelLayout), end.Format(labelLayout)),
			StartDate: start,
			EndDate:   end,
		})
	}
	return periods
}

// FindCurrent returns the id of the period containing today, falling back to the
// first (most recent) period. It returns "" for an empty list.
func FindCurrent(periods []Period, today time.Time) string {
	for _, p := range periods {
		if p.Contains(today) {
			return p.ID
		}
	}
	if len(periods) == 0 {
		return ""
	}
	return periods[0].ID
}

// Find returns the period with the given id and its index in the list.
func Find(periods []Period, id string) (Period, int, bool) {
	for i, p := range periods {
		if p.ID == id {
			return p, i, true
		}
	}
	return Period{}, -1, false
}

// Previous returns the period before id in time, which is the next element of the
// reverse-chronological list.
func Previous(periods []Period, id string) (Period, bool) {
	_, i, ok := Find(periods, id)
	if !ok || i+1 >= len(periods) {
		return Period{}, false
	}
	return periods[i+1], true
}

// Trend is the direction of a period-over-period change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Change is a rounded percentage change between two totals.
type Change struct {
	Percentage int   `json:"percentage"`
	Trend      Trend `json:"trend"`
}

// PercentageChange compares current against previous. A zero baseline yields 100%
// up for positive current values and 0% down otherwise; the trend follows the
// unrounded change.
func PercentageChange(current, previous float64) Change {
	if previous == 0 {
		if current > 0 {
			return Change{Percentage: 100, Trend: TrendUp}
		}
		return Change{Percentage: 0, Trend: TrendDown}
	}

	change := (current - previous) / previous * 100
	trend := TrendDown
	if change >= 0 {
		trend = TrendUp
	}
	return Change{
		Percentage: int(math.Floor(change + 0.5)),
		Trend:      trend,
	}
}
