// Package report groups timestamped records into calendar buckets for
// dashboard charting.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"fablab-reservation-backend/internal/parse"
)

// Granularity selects the calendar period records are bucketed by.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
	Yearly  Granularity = "year"
)

// Record is one input row: a timestamp plus named values. A record with a
// zero Date is dropped from the aggregate.
type Record struct {
	Date   time.Time
	Fields map[string]any
}

// Bucket is the aggregate for one calendar period. Sums holds a running total
// per requested field; values that are not numeric contribute zero.
type Bucket struct {
	PeriodKey   string             `json:"periodKey"`
	PeriodStart time.Time          `json:"periodStart"`
	Count       int                `json:"count"`
	Sums        map[string]float64 `json:"sums"`
}

// Aggregate buckets records by the calendar period containing their date and
// sums the requested fields per bucket. The result is sorted ascending by
// period start and is independent of input order; empty input yields an empty
// result. An unrecognized granularity falls back to daily.
func Aggregate(records []Record, g Granularity, fields []string) []Bucket {
	buckets := make(map[string]*Bucket)

	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}

		start := periodStart(rec.Date, g)
		key := periodKey(start, g)

		b, ok := buckets[key]
		if !ok {
			b = &Bucket{
				PeriodKey:   key,
				PeriodStart: start,
				Sums:        make(map[string]float64, len(fields)),
			}
			for _, f := range fields {
				b.Sums[f] = 0
			}
			buckets[key] = b
		}

		b.Count++
		for _, f := range fields {
			b.Sums[f] += toNumber(rec.Fields[f])
		}
	}

	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}

// periodStart normalizes t to the start of its containing period: midnight
// for days, Monday for weeks, the first for months, Jan 1 for years.
func periodStart(t time.Time, g Granularity) time.Time {
	day := parse.DateOnly(t)
	switch g {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func periodKey(start time.Time, g Granularity) string {
	switch g {
	case Weekly:
		end := start.AddDate(0, 0, 6)
		if start.Year() == end.Year() {
			return fmt.Sprintf("%s - %s, %d", start.Format("Jan 02"), end.Format("Jan 02"), start.Year())
		}
		return fmt.Sprintf("%s - %s", start.Format("Jan 02, 2006"), end.Format("Jan 02, 2006"))
	case Monthly:
		return start.Format("Jan 2006")
	case Yearly:
		return start.Format("2006")
	default:
		return start.Format("Jan 02, 2006")
	}
}

// toNumber coerces a field value to a float64, mirroring the permissive
// numeric handling of the dashboards this feeds: numbers pass through,
// numeric strings parse, everything else is zero.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}
