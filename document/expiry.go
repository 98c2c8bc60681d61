package document

import (
	"fmt"
	"time"

	"go-scan-induction/models"
)

const (
	expiryCriticalDays = 7
	expirySoonDays     = 30
)

// CalculateExpiry classifies how close a dated document is to expiring.
// It is a pure function of the date string and now; comparison is
// date-only in UTC. A date that cannot be parsed degrades to an unknown
// marker instead of failing the caller.
func CalculateExpiry(dateStr string, now time.Time) models.ExpiryInfo {
	expiry, err := ParseDiskDate(dateStr)
	if err != nil {
		return models.ExpiryInfo{
			Status:   models.ExpiryUnknown,
			Message:  "Expiry date could not be read",
			Severity: "grey",
		}
	}

	days := int(DateOnly(expiry).Sub(DateOnly(now)).Hours() / 24)

	switch {
	case days < 0:
		return models.ExpiryInfo{
			Status:          models.ExpiryExpired,
			DaysUntilExpiry: days,
			Message:         fmt.Sprintf("Expired %d days ago", -days),
			Severity:        "red",
		}
	case days <= expiryCriticalDays:
		return models.ExpiryInfo{
			Status:          models.ExpiryExpiringCritical,
			DaysUntilExpiry: days,
			Message:         fmt.Sprintf("Expires in %d days", days),
			Severity:        "orange",
		}
	case days <= expirySoonDays:
		return models.ExpiryInfo{
			Status:          models.ExpiryExpiringSoon,
			DaysUntilExpiry: days,
			Message:         fmt.Sprintf("Expires in %d days", days),
			Severity:        "amber",
		}
	default:
		return models.ExpiryInfo{
			Status:          models.ExpiryValid,
			DaysUntilExpiry: days,
			Message:         fmt.Sprintf("Valid for %d days", days),
			Severity:        "green",
		}
	}
}
