package document

import (
	"errors"
	"strings"
)

// Class is the closed set of document shapes the engine understands.
// Classification looks only at the structure of the raw scan, never at
// field contents.
type Class string

const (
	ClassVehicleDisk      Class = "vehicle-disk"
	ClassSmartID          Class = "smart-id"
	ClassLegacyNumericID  Class = "legacy-numeric-id"
	ClassEncryptedLicence Class = "encrypted-driver-licence"
	ClassUnrecognized     Class = "unrecognized"
)

// Minimum length of a hex blob before we consider it an encrypted
// driver licence payload. Real payloads are around 1400 characters;
// anything shorter is more likely a garbled read.
const minEncryptedLicenceLen = 1000

// Number of pipe-delimited fields a smart ID card must exceed.
const smartIDMinFields = 11

var (
	// ErrNotIDDocument is returned for pipe-delimited scans that do not
	// carry enough fields to be a smart ID card.
	ErrNotIDDocument = errors.New("scanned barcode is not an ID document")

	// ErrUnrecognized is returned when a scan matches none of the known
	// document shapes.
	ErrUnrecognized = errors.New("unrecognized document format")

	// ErrInsufficientData is returned when a recognized format is missing
	// mandatory fields.
	ErrInsufficientData = errors.New("insufficient data in scanned barcode")

	// ErrInvalidDate marks a date field whose day, month or year is out
	// of range.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingIdentity is returned when the field that identifies the
	// record (usually the ID number) is absent, failing the whole decode.
	ErrMissingIdentity = errors.New("identity field missing from document")
)

// StripWrapper removes the single leading and trailing '*' wrapper some
// ID scanners add around the payload.
func StripWrapper(raw string) string {
	raw = strings.TrimPrefix(raw, "*")
	raw = strings.TrimSuffix(raw, "*")
	return raw
}

// Classify determines the document class of a raw scan. It is pure and
// total: unrecognized input yields ClassUnrecognized together with an
// explanatory error, never a panic.
func Classify(raw string) (Class, error) {
	if strings.Contains(raw, "%") {
		return ClassVehicleDisk, nil
	}

	if strings.Contains(raw, "|") {
		if len(strings.Split(raw, "|")) > smartIDMinFields {
			return ClassSmartID, nil
		}
		return ClassUnrecognized, ErrNotIDDocument
	}

	if trimmed := strings.TrimSpace(raw); isDigits(trimmed) && len(trimmed) == 13 {
		return ClassLegacyNumericID, nil
	}

	if len(raw) >= minEncryptedLicenceLen && isHex(raw) {
		return ClassEncryptedLicence, nil
	}

	return ClassUnrecognized, ErrUnrecognized
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
