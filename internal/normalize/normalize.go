// Package normalize canonicalizes raw identity fields (email, phone, street
// address) into comparable lookup keys. All functions are pure and
// idempotent: normalizing an already-normalized key returns the same key.
package normalize

import (
	"regexp"
	"strings"
)

var (
	nonDigitRe   = regexp.MustCompile(`\D`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	zip5Re       = regexp.MustCompile(`^\d{5}`)
)

// streetAbbrevs maps USPS suffix and directional spellings to a single
// canonical form. Canonical forms map to themselves so normalization is
// idempotent.
var streetAbbrevs = map[string]string{
	// Suffixes.
	"AVENUE": "AV", "AVE": "AV", "AVENU": "AV", "AVN": "AV", "AV": "AV",
	"BOULEVARD": "BLVD", "BOUL": "BLVD", "BLV": "BLVD", "BLVD": "BLVD",
	"CIRCLE": "CIR", "CIRC": "CIR", "CIR": "CIR",
	"COURT": "CT", "CRT": "CT", "CT": "CT",
	"DRIVE": "DR", "DRV": "DR", "DR": "DR",
	"HIGHWAY": "HWY", "HIWAY": "HWY", "HWY": "HWY",
	"LANE": "LN", "LN": "LN",
	"PARKWAY": "PKWY", "PKWAY": "PKWY", "PKY": "PKWY", "PKWY": "PKWY",
	"PLACE": "PL", "PL": "PL",
	"ROAD": "RD", "RD": "RD",
	"SQUARE": "SQ", "SQR": "SQ", "SQ": "SQ",
	"STREET": "ST", "STR": "ST", "ST": "ST",
	"TERRACE": "TER", "TERR": "TER", "TER": "TER",
	"TRAIL": "TRL", "TRL": "TRL",
	"WAY": "WY", "WY": "WY",
	// Directionals.
	"NORTH": "N", "N": "N",
	"SOUTH": "S", "S": "S",
	"EAST": "E", "E": "E",
	"WEST": "W", "W": "W",
	"NORTHEAST": "NE", "NE": "NE",
	"NORTHWEST": "NW", "NW": "NW",
	"SOUTHEAST": "SE", "SE": "SE",
	"SOUTHWEST": "SW", "SW": "SW",
}

// addressPunct strips punctuation that varies between data sources without
// changing the address identity.
var addressPunct = strings.NewReplacer(
	".", "",
	",", " ",
	"#", " ",
	"'", "",
)

// Email canonicalizes a raw email address. Returns false for empty input or
// input without an "@".
func Email(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" || !strings.Contains(key, "@") {
		return "", false
	}
	return key, true
}

// Phone canonicalizes a raw U.S. phone number to its 10-digit form. An
// 11-digit number with a leading country-code 1 is accepted; anything else
// that is not exactly 10 digits is rejected.
func Phone(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

// Address canonicalizes a street line plus ZIP into a composite lookup key
// of the form "STREET|ZIP5". Suffix and directional words collapse to one
// canonical abbreviation so "123 North Main Street" and "123 N MAIN ST"
// produce the same key. Returns false if either input is missing or the ZIP
// has no usable 5-digit prefix.
func Address(street, zip string) (string, bool) {
	zip5, ok := Zip5(zip)
	if !ok {
		return "", false
	}

	s := strings.ToUpper(strings.TrimSpace(street))
	if s == "" {
		return "", false
	}
	s = addressPunct.Replace(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Split(s, " ")
	for i, w := range words {
		if canon, ok := streetAbbrevs[w]; ok {
			words[i] = canon
		}
	}

	return strings.Join(words, " ") + "|" + zip5, true
}

// Zip5 extracts the leading 5-digit ZIP from a raw value. ZIP+4 forms and
// trailing noise are tolerated; anything without a 5-digit prefix is
// rejected.
func Zip5(raw string) (string, bool) {
	zip5 := zip5Re.FindString(strings.TrimSpace(raw))
	if zip5 == "" {
		return "", false
	}
	return zip5, true
}
