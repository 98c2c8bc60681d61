package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Three-letter month abbreviations as printed on smart ID cards.
var monthAbbrevs = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

// Layouts attempted, in order, for the expiry field of a vehicle disk.
// The format has drifted over the years so older disks carry older shapes.
var diskDateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"02/01/2006",
	"02 Jan 2006",
}

// ParseDiskDate parses a vehicle disk date, trying each known encoding in
// order.
func ParseDiskDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("%w: empty date field", ErrInvalidDate)
	}

	for _, layout := range diskDateLayouts {
		if parsed, err := time.Parse(layout, dateStr); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no known disk date encoding", ErrInvalidDate, dateStr)
}

// ParsePersonDate parses the "DD MON YYYY" textual date printed on smart
// ID cards. Out-of-range day, month or year values yield an explicit
// invalid-date error rather than a crash.
func ParsePersonDate(dateStr string) (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(dateStr))
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q is not in DD MON YYYY form", ErrInvalidDate, dateStr)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day %q out of range", ErrInvalidDate, parts[0])
	}

	month, ok := monthAbbrevs[strings.ToUpper(parts[1])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month %q", ErrInvalidDate, parts[1])
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1800 || year > 2200 {
		return time.Time{}, fmt.Errorf("%w: year %q out of range", ErrInvalidDate, parts[2])
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ParseLegacyBirthDate derives a birth date from the first six digits of a
// legacy 13-digit ID number (YYMMDD). The century is inferred by comparing
// the two-digit year against the current year's last two digits: values at
// or below it map to the 2000s, anything above to the 1900s. This breaks
// for people born after the rollover boundary and needs revisiting once
// real 2000s-born drivers with high two-digit years appear.
func ParseLegacyBirthDate(yymmdd string, now time.Time) (time.Time, error) {
	if len(yymmdd) != 6 || !isDigits(yymmdd) {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYMMDD digit string", ErrInvalidDate, yymmdd)
	}

	yy, _ := strconv.Atoi(yymmdd[0:2])
	mm, _ := strconv.Atoi(yymmdd[2:4])
	dd, _ := strconv.Atoi(yymmdd[4:6])

	if mm < 1 || mm > 12 {
		return time.Time{}, fmt.Errorf("%w: month %02d out of range", ErrInvalidDate, mm)
	}
	if dd < 1 || dd > 31 {
		return time.Time{}, fmt.Errorf("%w: day %02d out of range", ErrInvalidDate, dd)
	}

	century := 1900
	if yy <= now.UTC().Year()%100 {
		century = 2000
	}

	return time.Date(century+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC), nil
}

// AgeAt returns whole years between birth and now.
func AgeAt(birth, now time.Time) int {
	birth = DateOnly(birth)
	now = DateOnly(now)

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// MonthsBetween returns the whole-month difference between from and to,
// negative when to lies in the past.
func MonthsBetween(from, to time.Time) int {
	from = DateOnly(from)
	to = DateOnly(to)

	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())

	// Truncate the partial month toward zero in either direction.
	if months > 0 && to.Day() < from.Day() {
		months--
	}
	if months < 0 && to.Day() > from.Day() {
		months++
	}
	return months
}

// DateOnly zeroes the time-of-day component in UTC. All expiry and age
// arithmetic goes through this to avoid off-by-one flakiness across
// time zones.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
