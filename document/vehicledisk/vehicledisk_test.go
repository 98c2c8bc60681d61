package vehicledisk

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go-scan-induction/document"
	"go-scan-induction/models"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

func testDisk(expiry string) string {
	fields := []string{
		"MVL1CC", "0001", "4023", "1", "4000123", // control fields
		"DSK0012345",     // disk number
		"LIC9876",        // licence number
		"ND123456",       // registration
		"SedanSedan",     // bilingual description
		"TOYOTA",         // make
		"LandCruiser",    // model
		"WhiteWit",       // colour
		"AHT31UNK409000", // VIN
		"1GD1234567",     // engine number
		expiry,
	}
	return strings.Join(fields, "%")
}

func TestDecodeValidDisk(t *testing.T) {
	record, err := Decode(testDisk("2030-01-15"), testNow)
	require.NoError(t, err)

	require.Equal(t, "DSK0012345", record.DiskNumber)
	require.Equal(t, "LIC9876", record.LicenceNumber)
	require.Equal(t, "ND123456", record.Registration)
	require.Equal(t, "Sedan / Sedan", record.Description)
	require.Equal(t, "Toyota", record.Make)
	require.Equal(t, "Land Cruiser", record.Model)
	require.Equal(t, "White", record.Colour)
	require.Equal(t, "AHT31UNK409000", record.VIN)
	require.Equal(t, "1GD1234567", record.EngineNumber)
	require.Equal(t, "2030-01-15", record.ExpiryDate)
	require.False(t, record.ExpiryUnknown)
	require.Equal(t, models.ExpiryValid, record.ExpireStatus)
	require.Equal(t, 67, record.ExpireMonths)
}

func TestDecodeIsDeterministic(t *testing.T) {
	scan := testDisk("2030-01-15")
	first, err := Decode(scan, testNow)
	require.NoError(t, err)
	second, err := Decode(scan, testNow)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecodeAcceptsAlternateDateEncodings(t *testing.T) {
	t.Run("eight digit expiry", func(t *testing.T) {
		record, err := Decode(testDisk("20300115"), testNow)
		require.NoError(t, err)
		require.Equal(t, "2030-01-15", record.ExpiryDate)
	})

	t.Run("slash expiry", func(t *testing.T) {
		record, err := Decode(testDisk("15/01/2030"), testNow)
		require.NoError(t, err)
		require.Equal(t, "2030-01-15", record.ExpiryDate)
	})
}

func TestDecodeMalformedExpiryKeepsIdentity(t *testing.T) {
	record, err := Decode(testDisk("31-31-9999"), testNow)
	require.NoError(t, err)

	require.Equal(t, "ND123456", record.Registration)
	require.True(t, record.ExpiryUnknown)
	require.Equal(t, models.ExpiryUnknown, record.ExpireStatus)
	require.Equal(t, "31-31-9999", record.ExpiryDate)
}

func TestDecodeExpiredDisk(t *testing.T) {
	record, err := Decode(testDisk("2024-01-15"), testNow)
	require.NoError(t, err)
	require.Equal(t, models.ExpiryExpired, record.ExpireStatus)
	require.Equal(t, -4, record.ExpireMonths)
}

func TestDecodeInsufficientFields(t *testing.T) {
	for fieldCount := 0; fieldCount < 15; fieldCount++ {
		t.Run(fmt.Sprintf("%d fields", fieldCount), func(t *testing.T) {
			scan := strings.Join(make([]string, fieldCount), "%")
			_, err := Decode(scan, testNow)
			require.ErrorIs(t, err, document.ErrInsufficientData)
		})
	}
}
