package reconciliation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

const (
	outlierWindow = 7
	outlierSigmas = 2.0
)

// ValidateBatch runs the cross-entry checks: duplicate register-days, gaps
// between recorded dates and sales outliers over the most recent entries.
func ValidateBatch(entries []models.SalesEntry) []models.ValidationError {
	errs := make([]models.ValidationError, 0)
	errs = append(errs, findDuplicates(entries)...)
	errs = append(errs, findMissingDates(entries)...)
	errs = append(errs, findAbnormalSales(entries)...)
	return errs
}

func findDuplicates(entries []models.SalesEntry) []models.ValidationError {
	var errs []models.ValidationError
	firstSeen := make(map[string]models.SalesEntry, len(entries))

	for _, entry := range entries {
		key := entry.DateKey() + "|" + entry.RegisterNumber
		first, ok := firstSeen[key]
		if !ok {
			firstSeen[key] = entry
			continue
		}
		errs = append(errs, models.ValidationError{
			Type:        models.ValidationDuplicateEntry,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("Duplicate entry for register %s on %s", entry.RegisterNumber, entry.DateKey()),
			EntryIDs:    []string{first.ID, entry.ID},
		})
	}

	return errs
}

func findMissingDates(entries []models.SalesEntry) []models.ValidationError {
	seen := make(map[string]time.Time)
	for _, entry := range entries {
		seen[entry.DateKey()] = models.TruncateDay(entry.Date)
	}

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var errs []models.ValidationError
	for i := 1; i < len(dates); i++ {
		gap := int(math.Round(dates[i].Sub(dates[i-1]).Hours() / 24))
		if gap <= 1 {
			continue
		}
		from := dates[i-1].Format(models.DateLayout)
		to := dates[i].Format(models.DateLayout)
		errs = append(errs, models.ValidationError{
			Type:        models.ValidationMissingDates,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("%d day(s) missing between %s and %s", gap-1, from, to),
			FromDate:    from,
			ToDate:      to,
			DaysMissing: gap - 1,
		})
	}

	return errs
}

// findAbnormalSales flags entries in the last outlierWindow entries (input
// order) whose total sales sit more than outlierSigmas population standard
// deviations from the window mean.
func findAbnormalSales(entries []models.SalesEntry) []models.ValidationError {
	if len(entries) < outlierWindow {
		return nil
	}

	window := entries[len(entries)-outlierWindow:]
	values := make([]float64, len(window))
	for i, entry := range window {
		values[i] = entry.TotalSales.InexactFloat64()
	}

	mean, stdDev := meanAndStdDev(values)
	if stdDev == 0 {
		return nil
	}

	var errs []models.ValidationError
	for i, entry := range window {
		deviation := values[i] - mean
		if math.Abs(deviation) <= outlierSigmas*stdDev {
			continue
		}
		direction := "high"
		if deviation < 0 {
			direction = "low"
		}
		errs = append(errs, models.ValidationError{
			Type:     models.ValidationAbnormalSales,
			Severity: models.SeverityMedium,
			Description: fmt.Sprintf("Unusually %s sales of %s on %s (average %.2f)",
				direction, entry.TotalSales.StringFixed(2), entry.DateKey(), mean),
			EntryID:   entry.ID,
			Date:      entry.DateKey(),
			Direction: direction,
		})
	}

	return errs
}

func meanAndStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var squares float64
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}

	return mean, math.Sqrt(squares / float64(len(values)))
}
