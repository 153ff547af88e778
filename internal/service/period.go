package service

import (
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// Period is a display window in trading days. PeriodAll keeps every row.
type Period int

const (
	PeriodAll Period = 0
	Period30  Period = 30
	Period60  Period = 60
	Period90  Period = 90
)

// Periods lists the selectable windows in display order.
var Periods = []Period{Period30, Period60, Period90, PeriodAll}

// ParsePeriod accepts "30", "60", "90", "all" or an empty string (all).
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return PeriodAll, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "invalid period %q", s)
	}

	return Period(n), nil
}

func (p Period) String() string {
	if p == PeriodAll {
		return "all"
	}

	return strconv.Itoa(int(p))
}

// Next cycles through Periods.
func (p Period) Next() Period {
	for i, candidate := range Periods {
		if candidate == p {
			return Periods[(i+1)%len(Periods)]
		}
	}

	return Periods[0]
}

// Apply returns the last p rows.
func (p Period) Apply(rows []types.AnnotatedRow) []types.AnnotatedRow {
	if p <= 0 || int(p) >= len(rows) {
		return rows
	}

	return rows[len(rows)-int(p):]
}
