package document

import (
	"fmt"
	"testing"
	"time"

	"go-scan-induction/models"

	"github.com/stretchr/testify/require"
)

func TestCalculateExpiryBoundaries(t *testing.T) {
	now := time.Date(2024, time.June, 1, 8, 30, 0, 0, time.UTC)

	expiryIn := func(days int) string {
		return now.AddDate(0, 0, days).Format("2006-01-02")
	}

	tests := []struct {
		days       int
		wantStatus models.ExpiryStatus
	}{
		{-30, models.ExpiryExpired},
		{-1, models.ExpiryExpired},
		{0, models.ExpiryExpiringCritical},
		{1, models.ExpiryExpiringCritical},
		{7, models.ExpiryExpiringCritical},
		{8, models.ExpiryExpiringSoon},
		{30, models.ExpiryExpiringSoon},
		{31, models.ExpiryValid},
		{365, models.ExpiryValid},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			info := CalculateExpiry(expiryIn(tt.days), now)
			require.Equal(t, tt.wantStatus, info.Status)
			require.Equal(t, tt.days, info.DaysUntilExpiry)
			require.NotEmpty(t, info.Message)
			require.NotEmpty(t, info.Severity)
		})
	}
}

func TestCalculateExpiryIgnoresTimeOfDay(t *testing.T) {
	// 23:00 local vs 01:00 local must not shift the day count.
	early := time.Date(2024, time.June, 1, 1, 0, 0, 0, time.UTC)
	late := time.Date(2024, time.June, 1, 23, 0, 0, 0, time.UTC)

	require.Equal(t,
		CalculateExpiry("2024-06-08", early).DaysUntilExpiry,
		CalculateExpiry("2024-06-08", late).DaysUntilExpiry)
}

func TestCalculateExpiryUnparseableDate(t *testing.T) {
	info := CalculateExpiry("NOT A DATE", time.Now())
	require.Equal(t, models.ExpiryUnknown, info.Status)
	require.Zero(t, info.DaysUntilExpiry)
}
