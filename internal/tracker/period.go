package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PeriodKind names a calendar period used to bucket entries.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
)

// PeriodKinds lists the supported kinds in increasing span.
var PeriodKinds = []PeriodKind{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriodKind accepts a period name case-insensitively.
func ParsePeriodKind(s string) (PeriodKind, error) {
	k := PeriodKind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k PeriodKind) validate() error {
	switch k {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return nil
	}
	return fmt.Errorf("%w: unsupported period kind %q (want day, week, month or year)", ErrValidation, string(k))
}

// Bucket is the half-open interval [Start, End) of one calendar period.
type Bucket struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Days returns the local midnight of every calendar day in the bucket.
func (b Bucket) Days() []time.Time {
	var days []time.Time
	for d := b.Start; d.Before(b.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Label is a short human description of the bucket.
func (b Bucket) Label() string {
	switch b.Kind {
	case PeriodDay:
		return b.Start.Format("Mon Jan 02, 2006")
	case PeriodWeek:
		return fmt.Sprintf("%s – %s", b.Start.Format("Jan 02"), b.End.AddDate(0, 0, -1).Format("Jan 02, 2006"))
	case PeriodMonth:
		return b.Start.Format("January 2006")
	case PeriodYear:
		return b.Start.Format("2006")
	}
	return ""
}

// Shift returns the bucket n periods later (earlier when n < 0).
func (b Bucket) Shift(n int) Bucket {
	var ref time.Time
	switch b.Kind {
	case PeriodDay:
		ref = b.Start.AddDate(0, 0, n)
	case PeriodWeek:
		ref = b.Start.AddDate(0, 0, 7*n)
	case PeriodMonth:
		ref = b.Start.AddDate(0, n, 0)
	case PeriodYear:
		ref = b.Start.AddDate(n, 0, 0)
	default:
		return b
	}
	next, _ := ResolveBucket(b.Kind, ref)
	return next
}

// ResolveBucket returns the period of the given kind containing ref, using
// the local calendar of ref. Weeks start on Monday.
func ResolveBucket(kind PeriodKind, ref time.Time) (Bucket, error) {
	if err := kind.validate(); err != nil {
		return Bucket{}, err
	}
	loc := ref.Location()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	var start, end time.Time
	switch kind {
	case PeriodDay:
		start = day
		end = day.AddDate(0, 0, 1)
	case PeriodWeek:
		weekday := day.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start = day.AddDate(0, 0, -int(weekday-time.Monday))
		end = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case PeriodYear:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	}
	return Bucket{Kind: kind, Start: start, End: end}, nil
}

// RoundMinutes converts d to whole minutes, rounding half away from zero.
// Negative durations clamp to zero.
func RoundMinutes(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Round(d.Minutes()))
}
