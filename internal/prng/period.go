package prng

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoWeekExpr = regexp.MustCompile(`^(\d{4})-?W(\d{2})$`)

// Period identifies one selection window and its derived seed.
type Period struct {
	Key  string
	Seed uint32
}

// PeriodOf returns the ISO week containing t in t's location. The seed is isoYear*100+week.
func PeriodOf(t time.Time) Period {
	year, week := t.ISOWeek()
	return Period{
		Key:  fmt.Sprintf("%04d-W%02d", year, week),
		Seed: uint32(year*100 + week),
	}
}

// ParsePeriod accepts an ISO week ("2026-W42"), a calendar date ("2026-10-19")
// or any other non-empty key, which is seeded by hash.
func ParsePeriod(key string) (Period, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Period{}, fmt.Errorf("period key is empty")
	}

	if m := isoWeekExpr.FindStringSubmatch(strings.ToUpper(key)); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		if week < 1 || week > 53 {
			return Period{}, fmt.Errorf("period %q: week %d out of range", key, week)
		}
		return Period{Key: fmt.Sprintf("%04d-W%02d", year, week), Seed: uint32(year*100 + week)}, nil
	}

	if day, err := time.Parse("2006-01-02", key); err == nil {
		return PeriodOf(day), nil
	}

	return Period{Key: key, Seed: HashKey(key)}, nil
}
