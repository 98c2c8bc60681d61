// Package smartid decodes the pipe-delimited smart ID card barcode and
// the legacy 13-digit green-book ID number.
package smartid

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go-scan-induction/document"
	"go-scan-induction/models"
)

// Smart ID card field positions. Field 0 is the card format header.
const (
	fieldSurname        = 1
	fieldNames          = 2
	fieldGender         = 3
	fieldNationality    = 4
	fieldIDNumber       = 5
	fieldBirthDate      = 6
	fieldCountryOfBirth = 7
	fieldStatus         = 8
	fieldIssueDate      = 9
	fieldSecurityCode   = 10
	fieldCardNumber     = 11

	minFields = 12
)

// Positions inside a legacy 13-digit ID number.
const (
	legacyBirthEnd      = 6  // digits 0-5: YYMMDD
	legacyGenderEnd     = 10 // digits 6-9: sequence, <5000 female
	legacyCitizenDigit  = 10 // digit 10: 0 citizen, else permanent resident
	legacyGenderFemales = 5000
)

// DecodeSmartID parses a pipe-delimited smart ID card scan. The ID number
// is load-bearing: without it the whole decode fails. A malformed birth
// date degrades by falling back to the date encoded in the ID number
// itself.
func DecodeSmartID(raw string, now time.Time) (*models.PersonRecord, error) {
	fields := strings.Split(raw, "|")
	if len(fields) < minFields {
		return nil, fmt.Errorf("%w: expected at least %d |-delimited fields, got %d",
			document.ErrNotIDDocument, minFields, len(fields))
	}

	idNumber := strings.TrimSpace(fields[fieldIDNumber])
	if idNumber == "" {
		return nil, fmt.Errorf("%w: smart ID carries no ID number", document.ErrMissingIdentity)
	}

	record := &models.PersonRecord{
		IDNumber:          idNumber,
		Surname:           strings.TrimSpace(fields[fieldSurname]),
		Names:             strings.TrimSpace(fields[fieldNames]),
		Gender:            parseGenderCode(fields[fieldGender]),
		Nationality:       strings.TrimSpace(fields[fieldNationality]),
		CountryOfBirth:    strings.TrimSpace(fields[fieldCountryOfBirth]),
		CitizenshipStatus: strings.TrimSpace(fields[fieldStatus]),
		SecurityCode:      strings.TrimSpace(fields[fieldSecurityCode]),
		CardNumber:        strings.TrimSpace(fields[fieldCardNumber]),
		Age:               models.AgeUnknown,
	}
	record.Initials = initialsOf(record.Names)

	birth, err := document.ParsePersonDate(fields[fieldBirthDate])
	if err != nil {
		slog.Warn("smart ID birth date unreadable, falling back to ID number digits",
			"id_number", idNumber, "error", err)
		birth, err = document.ParseLegacyBirthDate(firstSix(idNumber), now)
	}
	if err == nil {
		record.BirthDate = birth
		record.Age = document.AgeAt(birth, now)
	}

	if issue, err := document.ParsePersonDate(fields[fieldIssueDate]); err == nil {
		record.IssueDate = issue
	} else {
		slog.Warn("smart ID issue date unreadable", "id_number", idNumber, "error", err)
	}

	record.Description = describe(record.Gender, record.Age)
	return record, nil
}

// DecodeLegacyID derives a PersonRecord from a bare 13-digit ID number.
// Birth date, gender and citizenship are all positional.
func DecodeLegacyID(raw string, now time.Time) (*models.PersonRecord, error) {
	idNumber := strings.TrimSpace(raw)
	if len(idNumber) != 13 || !allDigits(idNumber) {
		return nil, fmt.Errorf("%w: %q is not a 13-digit ID number", document.ErrNotIDDocument, raw)
	}

	record := &models.PersonRecord{
		IDNumber: idNumber,
		Age:      models.AgeUnknown,
	}

	birth, err := document.ParseLegacyBirthDate(idNumber[:legacyBirthEnd], now)
	if err != nil {
		slog.Warn("legacy ID birth digits unreadable, keeping record without birth date",
			"id_number", idNumber, "error", err)
	} else {
		record.BirthDate = birth
		record.Age = document.AgeAt(birth, now)
	}

	sequence, err := strconv.Atoi(idNumber[legacyBirthEnd:legacyGenderEnd])
	if err == nil && sequence < legacyGenderFemales {
		record.Gender = models.GenderFemale
	} else if err == nil {
		record.Gender = models.GenderMale
	} else {
		record.Gender = models.GenderUnknown
	}

	if idNumber[legacyCitizenDigit] == '0' {
		record.CitizenshipStatus = "Citizen"
	} else {
		record.CitizenshipStatus = "Permanent Resident"
	}

	record.Description = describe(record.Gender, record.Age)
	return record, nil
}

func parseGenderCode(code string) models.Gender {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M":
		return models.GenderMale
	case "F":
		return models.GenderFemale
	default:
		return models.GenderUnknown
	}
}

func describe(gender models.Gender, age int) string {
	if age == models.AgeUnknown {
		return strings.ToUpper(string(gender))
	}
	return fmt.Sprintf("%s, %d YEARS OLD", strings.ToUpper(string(gender)), age)
}

func initialsOf(names string) string {
	var b strings.Builder
	for _, word := range strings.Fields(names) {
		for _, r := range word {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}

func firstSix(s string) string {
	if len(s) < 6 {
		return s
	}
	return s[:6]
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
