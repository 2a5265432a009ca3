package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"leaveflow/internal/domain/holiday"
	"leaveflow/internal/domain/leave"
)

// BusinessDays counts the days in [start, end] that are neither weekend days
// nor one of holidays. start > end yields 0 and start == end yields 1.
func BusinessDays(start, end time.Time, holidays []holiday.Holiday) decimal.Decimal {
	start, end = leave.DateOnly(start), leave.DateOnly(end)
	if start.After(end) {
		return decimal.Zero
	}
	if start.Equal(end) {
		return decimal.NewFromInt(1)
	}

	closed := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		if h.IsActive {
			closed[leave.DateOnly(h.Date)] = struct{}{}
		}
	}

	var n int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := closed[d]; ok {
			continue
		}
		n++
	}
	return decimal.NewFromInt(n)
}

// Service sizes date ranges against the holiday calendar provider.
type Service struct {
	holidays holiday.Repository
}

func NewService(holidays holiday.Repository) *Service {
	return &Service{holidays: holidays}
}

func (s *Service) BusinessDays(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	start, end = leave.DateOnly(start), leave.DateOnly(end)
	if start.After(end) {
		return decimal.Zero, nil
	}
	hs, err := s.holidays.ListActiveBetween(ctx, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list holidays: %w", err)
	}
	return BusinessDays(start, end, hs), nil
}
