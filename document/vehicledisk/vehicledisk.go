// Package vehicledisk decodes the %-delimited text format found on
// vehicle licence disk barcodes.
package vehicledisk

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-scan-induction/document"
	"go-scan-induction/models"
)

// The disk format is positional and fixed by the issuing authority.
// Fields 0-4 carry control data the engine has no use for.
const (
	fieldDiskNumber    = 5
	fieldLicenceNumber = 6
	fieldRegistration  = 7
	fieldDescription   = 8
	fieldMake          = 9
	fieldModel         = 10
	fieldColour        = 11
	fieldVIN           = 12
	fieldEngineNumber  = 13
	fieldExpiryDate    = 14

	minFields = 15
)

// Decode parses a %-delimited vehicle disk scan into a VehicleRecord.
// Decoding is all-or-nothing for the identity fields, but a malformed
// expiry date degrades to an explicit unknown marker: vehicle identity
// must never be lost because of a bad date.
func Decode(raw string, now time.Time) (*models.VehicleRecord, error) {
	fields := strings.Split(raw, "%")
	if len(fields) < minFields {
		return nil, fmt.Errorf("%w: expected at least %d %%-delimited fields, got %d",
			document.ErrInsufficientData, minFields, len(fields))
	}

	record := &models.VehicleRecord{
		DiskNumber:    strings.TrimSpace(fields[fieldDiskNumber]),
		LicenceNumber: strings.TrimSpace(fields[fieldLicenceNumber]),
		Registration:  strings.TrimSpace(fields[fieldRegistration]),
		Description:   document.NormalizeDescription(fields[fieldDescription]),
		Make:          document.NormalizeField(fields[fieldMake]),
		Model:         document.NormalizeField(fields[fieldModel]),
		Colour:        document.NormalizeColour(fields[fieldColour]),
		VIN:           strings.TrimSpace(fields[fieldVIN]),
		EngineNumber:  strings.TrimSpace(fields[fieldEngineNumber]),
	}

	rawExpiry := strings.TrimSpace(fields[fieldExpiryDate])
	expiry, err := document.ParseDiskDate(rawExpiry)
	if err != nil {
		slog.Warn("vehicle disk expiry date could not be parsed, keeping record without it",
			"registration", record.Registration,
			"raw_expiry", rawExpiry,
			"error", err)
		record.ExpiryDate = rawExpiry
		record.ExpiryUnknown = true
		record.ExpireStatus = models.ExpiryUnknown
		return record, nil
	}

	record.ExpiryDate = expiry.Format("2006-01-02")
	record.ExpireStatus = document.CalculateExpiry(record.ExpiryDate, now).Status
	record.ExpireMonths = document.MonthsBetween(now, expiry)

	return record, nil
}
