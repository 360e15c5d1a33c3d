package service

import (
	"context"
	"time"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/payroll"
)

// PeriodList is the materialized payroll calendar around today.
type PeriodList struct {
	Periods         []payroll.Period `json:"periods"`
	CurrentPeriodID string           `json:"currentPeriodId"`
}

// DashboardOverview compares one payroll period against the one before it.
type DashboardOverview struct {
	Period          payroll.Period      `json:"period"`
	PreviousPeriod  *payroll.Period     `json:"previousPeriod,omitempty"`
	Entries         []*models.WorkEntry `json:"entries"`
	Summary         models.Summary      `json:"summary"`
	PreviousSummary models.Summary      `json:"previousSummary"`
	HoursChange     payroll.Change      `json:"hoursChange"`
	AmountChange    payroll.Change      `json:"amountChange"`
	HasPreviousData bool                `json:"hasPreviousData"`
}

type DashboardService struct {
	ledger *LedgerService
	loc    *time.Location
	now    func() time.Time
}

func NewDashboardService(ledger *LedgerService, loc *time.Location) *DashboardService {
	return &DashboardService{
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
	}
}

// Today returns the current date in the configured timezone.
func (s *DashboardService) Today() time.Time {
	return s.now().In(s.loc)
}

// Periods lists the payroll periods around today and marks the current one.
func (s *DashboardService) Periods() PeriodList {
	today := s.Today()
	periods := payroll.Generate(today)
	return PeriodList{
		Periods:         periods,
		CurrentPeriodID: payroll.FindCurrent(periods, today),
	}
}

// Overview summarizes periodID, or the current period when periodID is empty.
func (s *DashboardService) Overview(ctx context.Context, ownerID int64, periodID string) (*DashboardOverview, error) {
	list := s.Periods()
	if periodID == "" {
		periodID = list.CurrentPeriodID
	}

	period, _, ok := payroll.Find(list.Periods, periodID)
	if !ok {
		return nil, apperrors.NewNotFoundError("payroll period", periodID)
	}

	current, err := s.ledger.List(ctx, ownerID, models.ListFilter{
		StartDate: &period.StartDate,
		EndDate:   &period.EndDate,
		Limit:     s.ledger.maxLimit,
	})
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		Period:  period,
		Entries: current.Entries,
		Summary: current.Summary,
	}

	if prev, ok := payroll.Previous(list.Periods, periodID); ok {
		summary, err := s.ledger.Summarize(ctx, ownerID, models.ListFilter{
			StartDate: &prev.StartDate,
			EndDate:   &prev.EndDate,
		})
		if err != nil {
			return nil, err
		}
		overview.PreviousPeriod = &prev
		overview.PreviousSummary = summary
		overview.HasPreviousData = !summary.TotalHours.IsZero() || !summary.TotalAmount.IsZero()
	}

	overview.HoursChange = payroll.PercentageChange(
		overview.Summary.TotalHours.InexactFloat64(),
		overview.PreviousSummary.TotalHours.InexactFloat64(),
	)
	overview.AmountChange = payroll.PercentageChange(
		overview.Summary.TotalAmount.InexactFloat64(),
		overview.PreviousSummary.TotalAmount.InexactFloat64(),
	)
	return overview, nil
}
