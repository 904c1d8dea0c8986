package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var half = decimal.NewFromFloat(0.5)

// ParseDate parses YYYY-MM-DD as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsHalfDay(dayType string) bool {
	return dayType == DayTypeFirstHalf || dayType == DayTypeSecondHalf
}

func IsValidDayType(dayType string) bool {
	return dayType == DayTypeFull || IsHalfDay(dayType)
}

// HolidaySet holds non-working dates keyed by YYYY-MM-DD.
type HolidaySet map[string]struct{}

func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		if !h.IsActive || h.IsOptional {
			continue
		}
		set[h.Date.UTC().Format(DateLayout)] = struct{}{}
	}
	return set
}

func (s HolidaySet) IsHoliday(date time.Time) bool {
	_, ok := s[date.UTC().Format(DateLayout)]
	return ok
}

// CountLeaveDays counts working days in [start, end], skipping weekends and
// holidays. A half-day start counts 0.5 on the first day; otherwise a
// half-day end counts 0.5 on the last day.
func CountLeaveDays(start, end time.Time, startType, endType string, holidays HolidaySet) decimal.Decimal {
	start, end = DateOnly(start), DateOnly(end)
	total := decimal.Zero

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if holidays.IsHoliday(day) {
			continue
		}

		switch {
		case day.Equal(start) && IsHalfDay(startType):
			total = total.Add(half)
		case day.Equal(end) && IsHalfDay(endType):
			total = total.Add(half)
		default:
			total = total.Add(decimal.NewFromInt(1))
		}
	}

	return total
}

// Calendar answers holiday questions for one company over a date range.
type Calendar struct {
	repo HolidayRepository
}

func NewCalendar(repo HolidayRepository) *Calendar {
	return &Calendar{repo: repo}
}

func (c *Calendar) Holidays(ctx context.Context, companyID string, from, to time.Time) (HolidaySet, error) {
	holidays, err := c.repo.FindBetween(ctx, companyID, DateOnly(from), DateOnly(to))
	if err != nil {
		return nil, err
	}
	return NewHolidaySet(holidays), nil
}
