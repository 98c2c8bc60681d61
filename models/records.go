package models

import "time"

// Gender as decoded from an identity document.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// ExpiryStatus classifies how close a document or disk is to its expiry date.
type ExpiryStatus string

const (
	ExpiryValid            ExpiryStatus = "valid"
	ExpiryExpiringSoon     ExpiryStatus = "expiring-soon"
	ExpiryExpiringCritical ExpiryStatus = "expiring-critical"
	ExpiryExpired          ExpiryStatus = "expired"
	ExpiryUnknown          ExpiryStatus = "unknown"
)

// AgeUnknown marks a PersonRecord whose birth date could not be determined.
const AgeUnknown = -1

// PersonRecord is the decoded form of a smart ID card, a legacy green-book
// ID number or a driving licence. Immutable once produced.
type PersonRecord struct {
	IDNumber          string    `json:"id_number"`
	Surname           string    `json:"surname"`
	Names             string    `json:"names"`
	Initials          string    `json:"initials"`
	Gender            Gender    `json:"gender"`
	BirthDate         time.Time `json:"birth_date,omitempty"`
	Nationality       string    `json:"nationality,omitempty"`
	CountryOfBirth    string    `json:"country_of_birth,omitempty"`
	SecurityCode      string    `json:"security_code,omitempty"`
	CardNumber        string    `json:"card_number,omitempty"`
	IssueDate         time.Time `json:"issue_date,omitempty"`
	CitizenshipStatus string    `json:"citizenship_status,omitempty"`
	Age               int       `json:"age"`
	Description       string    `json:"description"`
}

// LicenceRecord carries the driving-licence fields of a decoded document.
// Only present when the source document encodes them.
type LicenceRecord struct {
	LicenceNumber string    `json:"licence_number"`
	IssueDate     time.Time `json:"issue_date,omitempty"`
	ExpiryDate    time.Time `json:"expiry_date,omitempty"`
	LicenceType   string    `json:"licence_type,omitempty"`
	Restrictions  string    `json:"restrictions,omitempty"`
}

// VehicleRecord is the decoded form of a vehicle licence disk.
type VehicleRecord struct {
	Registration  string       `json:"registration"`
	Make          string       `json:"make"`
	Model         string       `json:"model"`
	Colour        string       `json:"colour"`
	Description   string       `json:"description"`
	DiskNumber    string       `json:"disk_number"`
	LicenceNumber string       `json:"licence_number"`
	VIN           string       `json:"vin"`
	EngineNumber  string       `json:"engine_number"`
	ExpiryDate    string       `json:"expiry_date"`
	ExpiryUnknown bool         `json:"expiry_unknown,omitempty"`
	ExpireStatus  ExpiryStatus `json:"expire_status"`
	ExpireMonths  int          `json:"expire_months"`
}

// ExpiryInfo is the derived validity of a dated document, recomputed on
// demand and never cached beyond a single evaluation.
type ExpiryInfo struct {
	Status          ExpiryStatus `json:"status"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Message         string       `json:"message"`
	Severity        string       `json:"severity"`
}

// ScanResult is the format-agnostic outcome of decoding one raw scan.
// Exactly one of Vehicle or Person is set; Licence rides along with Person
// when the source document encodes driving-licence fields.
type ScanResult struct {
	Class   string         `json:"class"`
	Vehicle *VehicleRecord `json:"vehicle,omitempty"`
	Person  *PersonRecord  `json:"person,omitempty"`
	Licence *LicenceRecord `json:"licence,omitempty"`
}

// InductionRecord is what the engine emits on a verified dual scan: the
// normalized identifier plus whatever was decoded along the way. The
// persistence layer is solely responsible for storing it.
type InductionRecord struct {
	Identifier string      `json:"identifier"`
	Kind       string      `json:"kind"`
	Result     *ScanResult `json:"result,omitempty"`
	VerifiedAt time.Time   `json:"verified_at"`
}
