// Package decoder dispatches a raw scan to the decoder for its document
// class. The switch is deliberately exhaustive over every Class variant
// so a new class cannot silently fall through.
package decoder

import (
	"context"
	"fmt"
	"time"

	"go-scan-induction/document"
	"go-scan-induction/document/sadl"
	"go-scan-induction/document/smartid"
	"go-scan-induction/document/vehicledisk"
	"go-scan-induction/models"
)

// Decode normalizes, classifies and decodes one raw scan. The decryptor
// is only consulted for encrypted driver licences; all other paths are
// synchronous and pure.
func Decode(ctx context.Context, raw string, now time.Time, decryptor sadl.Decryptor) (*models.ScanResult, error) {
	stripped := document.StripWrapper(raw)

	class, err := document.Classify(stripped)
	if err != nil {
		return nil, err
	}

	switch class {
	case document.ClassVehicleDisk:
		vehicle, err := vehicledisk.Decode(stripped, now)
		if err != nil {
			return nil, err
		}
		return &models.ScanResult{Class: string(class), Vehicle: vehicle}, nil

	case document.ClassSmartID:
		person, err := smartid.DecodeSmartID(stripped, now)
		if err != nil {
			return nil, err
		}
		return &models.ScanResult{Class: string(class), Person: person}, nil

	case document.ClassLegacyNumericID:
		person, err := smartid.DecodeLegacyID(stripped, now)
		if err != nil {
			return nil, err
		}
		return &models.ScanResult{Class: string(class), Person: person}, nil

	case document.ClassEncryptedLicence:
		if decryptor == nil {
			return nil, fmt.Errorf("no decryptor configured for encrypted driver licences")
		}
		payload, err := decryptor.Decrypt(ctx, stripped)
		if err != nil {
			// Surfaced verbatim: the operator must be able to tell an
			// undecryptable barcode from an unreadable one.
			return nil, err
		}
		person, licence, err := sadl.ToRecords(payload, now)
		if err != nil {
			return nil, err
		}
		return &models.ScanResult{Class: string(class), Person: person, Licence: licence}, nil

	case document.ClassUnrecognized:
		return nil, document.ErrUnrecognized

	default:
		return nil, fmt.Errorf("no decoder registered for document class %q", class)
	}
}
