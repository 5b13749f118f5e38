package cache

import (
	"fmt"
	"time"

	"github.com/inkleaf/journal/internal/models"
)

// EntryKey derives the entry-namespace key for one owner/date pair,
// e.g. "usr-a1B2c3D4e5_2026-01-05".
func EntryKey(ownerID string, date models.Date) string {
	return ownerID + "_" + date.String()
}

// MonthKey derives the month-namespace key for one owner/month pair,
// e.g. "usr-a1B2c3D4e5_2026_1".
func MonthKey(ownerID string, year int, month time.Month) string {
	return fmt.Sprintf("%s_%d_%d", ownerID, year, int(month))
}
