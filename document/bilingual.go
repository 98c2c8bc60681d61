package document

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vehicle disks carry free text in both English and Afrikaans, often
// concatenated without a separator ("WhiteWit") or slash-separated
// ("Rooi/Red"). These helpers normalize that text to a single canonical
// form for display.

// English/Afrikaans colour twins as they appear on licence disks. The
// list is data on purpose: three-way combinations and newer colour names
// still need domain confirmation.
var colourTwins = map[string]string{
	"White":  "Wit",
	"Red":    "Rooi",
	"Blue":   "Blou",
	"Green":  "Groen",
	"Black":  "Swart",
	"Grey":   "Grys",
	"Silver": "Silwer",
	"Yellow": "Geel",
	"Brown":  "Bruin",
	"Orange": "Oranje",
	"Purple": "Pers",
	"Gold":   "Goud",
	"Pink":   "Pienk",
	"Cream":  "Room",
	"Bronze": "Brons",
	"Maroon": "Maroen",
}

// SplitCompound inserts a space wherever a lowercase letter is directly
// followed by an uppercase one, undoing the concatenated compound words
// the disk format produces.
func SplitCompound(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && isLower(runes[i-1]) && isUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// TitleCase title-cases every word of s.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// NormalizeField cleans a free-text disk field (make, model) into spaced,
// title-cased words.
func NormalizeField(s string) string {
	return TitleCase(strings.Join(strings.Fields(SplitCompound(strings.TrimSpace(s))), " "))
}

// NormalizeColour resolves a possibly-bilingual colour field to one
// canonical word, preferring the English member of a known colour twin
// when both languages are present.
func NormalizeColour(s string) string {
	s = NormalizeField(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if _, ok := colourTwins[part]; ok {
				return part
			}
		}
		// Unknown pair: the disk format puts the local-language word
		// first, so the part before the slash is the safer pick.
		return strings.TrimSpace(parts[0])
	}

	words := strings.Fields(s)
	for _, word := range words {
		twin, ok := colourTwins[word]
		if !ok {
			continue
		}
		for _, other := range words {
			if other == twin {
				return word
			}
		}
	}
	return s
}

// NormalizeDescription turns a concatenated bilingual type description
// into "<English> / <Translated>". The word list is halved; the first
// half is the English phrase, the second the translation.
func NormalizeDescription(s string) string {
	words := strings.Fields(NormalizeField(s))
	if len(words) == 0 {
		return ""
	}

	half := len(words) / 2
	english := strings.Join(words[:half], " ")
	translated := strings.Join(words[half:], " ")

	if english == "" {
		return translated
	}
	if translated == "" {
		return english
	}
	return fmt.Sprintf("%s / %s", english, translated)
}
