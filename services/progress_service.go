package services

import (
	"math"
	"time"

	"sitetrack/models"
)

// Stock health buckets. A quantity sitting exactly on a boundary belongs to
// the more urgent bucket: quantity == reorderLevel is critical, not warning.
const (
	StockCritical = "critical"
	StockWarning  = "warning"
	StockHealthy  = "healthy"
)

// Rollups are never stored: every percentage below is recomputed from the
// current document on each call, and every function is zero-safe: an empty
// or zero-target input yields 0, never NaN or Inf.

// CalculateOverallProgress is the physical progress of a structure: summed
// completed quantity over summed target quantity across its components,
// rounded to the nearest whole percent.
func CalculateOverallProgress(s models.StructureAsset) int {
	var completed, total float64
	for _, c := range s.Components {
		completed += c.CompletedQuantity
		total += c.TotalQuantity
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(completed / total * 100))
}

// CalculateComponentProgress is the per-component progress used by the row
// progress bars, clamped to [0, 100]. Execution can legitimately exceed the
// target; the display caps at 100 while the ledger keeps the real figure.
func CalculateComponentProgress(c models.StructureComponent) float64 {
	if c.TotalQuantity <= 0 {
		return 0
	}
	pct := c.CompletedQuantity / c.TotalQuantity * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CalculateBOQProgress is financial progress: weighted by line-item value,
// not by item count, so a big-ticket item moves the number more than a small
// one at the same physical percentage.
func CalculateBOQProgress(items []models.BOQItem) int {
	var earned, total float64
	for _, item := range items {
		earned += item.CompletedQuantity * item.Rate
		total += item.Quantity * item.Rate
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(earned / total * 100))
}

// CalculateScheduleProgress is time burn: the share of the contract period
// elapsed at `now`, clamped to [0, 100]. Missing or unparseable dates yield 0.
func CalculateScheduleProgress(schedule *models.ScheduleInfo, now time.Time) int {
	if schedule == nil {
		return 0
	}
	start, okStart := parseScheduleDate(schedule.StartDate)
	end, okEnd := parseScheduleDate(schedule.EndDate)
	if !okStart || !okEnd {
		return 0
	}
	if now.Before(start) {
		return 0
	}
	if now.After(end) {
		return 100
	}
	span := end.Sub(start)
	if span <= 0 {
		// Degenerate single-day contract; now is within it, so it has burned.
		return 100
	}
	return int(math.Round(float64(now.Sub(start)) / float64(span) * 100))
}

// StockStatus buckets a quantity against its reorder level. Warning covers
// the band up to 1.5x the reorder level.
func StockStatus(quantity, reorderLevel float64) string {
	switch {
	case quantity <= reorderLevel:
		return StockCritical
	case quantity <= reorderLevel*1.5:
		return StockWarning
	default:
		return StockHealthy
	}
}

// StockStatusCounts tallies the materials of a project into health buckets
// for the dashboard cards.
func StockStatusCounts(materials []models.Material) map[string]int {
	counts := map[string]int{
		StockCritical: 0,
		StockWarning:  0,
		StockHealthy:  0,
	}
	for _, m := range materials {
		counts[StockStatus(m.Quantity, m.ReorderLevel)]++
	}
	return counts
}

var scheduleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
}

func parseScheduleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range scheduleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
