// Package sadl handles the encrypted driver-licence path. The hex
// payload on the barcode cannot be decoded locally; it is handed to the
// external SADL decrypt-and-decode service and the structured result is
// mapped onto the same record shapes the other decoders produce.
package sadl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-scan-induction/document"
	"go-scan-induction/models"
)

// DecodedLicencePayload is the intermediate result returned by the
// decrypt service.
type DecodedLicencePayload struct {
	IDNumber      string   `json:"id_number"`
	Surname       string   `json:"surname"`
	Initials      string   `json:"initials"`
	Gender        string   `json:"gender"`
	BirthDate     string   `json:"birth_date"`
	LicenceNumber string   `json:"licence_number"`
	VehicleCodes  []string `json:"vehicle_codes"`
	Restrictions  []string `json:"restrictions"`
	IssueDate     string   `json:"issue_date"`
	ExpiryDate    string   `json:"expiry_date"`
	Country       string   `json:"country,omitempty"`
}

// DecryptionError marks a payload the external service rejected. It is
// distinct from a parse failure so the operator knows the barcode itself
// may be fine but undecryptable (hardware or firmware trouble).
type DecryptionError struct {
	Message string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("licence decryption failed: %s", e.Message)
}

// Decryptor is the external decrypt-and-decode boundary. Implementations
// must honour context cancellation; the engine never retries on its own.
type Decryptor interface {
	Decrypt(ctx context.Context, hexPayload string) (*DecodedLicencePayload, error)
}

// ToRecords maps a decrypted payload into the shared person/licence
// record shape so downstream consumers stay format-agnostic.
func ToRecords(payload *DecodedLicencePayload, now time.Time) (*models.PersonRecord, *models.LicenceRecord, error) {
	if payload == nil {
		return nil, nil, fmt.Errorf("%w: empty licence payload", document.ErrMissingIdentity)
	}
	if strings.TrimSpace(payload.IDNumber) == "" {
		return nil, nil, fmt.Errorf("%w: licence payload carries no ID number", document.ErrMissingIdentity)
	}

	person := &models.PersonRecord{
		IDNumber:    strings.TrimSpace(payload.IDNumber),
		Surname:     strings.TrimSpace(payload.Surname),
		Initials:    strings.TrimSpace(payload.Initials),
		Gender:      parseGender(payload.Gender),
		Nationality: strings.TrimSpace(payload.Country),
		Age:         models.AgeUnknown,
	}

	if birth, err := time.Parse("2006-01-02", payload.BirthDate); err == nil {
		person.BirthDate = birth
		person.Age = document.AgeAt(birth, now)
	}

	person.Description = describe(person.Gender, person.Age)

	licence := &models.LicenceRecord{
		LicenceNumber: strings.TrimSpace(payload.LicenceNumber),
		LicenceType:   strings.Join(payload.VehicleCodes, ","),
		Restrictions:  strings.Join(payload.Restrictions, ","),
	}
	if issue, err := time.Parse("2006-01-02", payload.IssueDate); err == nil {
		licence.IssueDate = issue
	}
	if expiry, err := time.Parse("2006-01-02", payload.ExpiryDate); err == nil {
		licence.ExpiryDate = expiry
	}

	return person, licence, nil
}

func parseGender(code string) models.Gender {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M", "MALE":
		return models.GenderMale
	case "F", "FEMALE":
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
