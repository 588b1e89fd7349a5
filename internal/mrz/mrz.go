// Package mrz parses the machine-readable zone printed on identity
// documents. The OCR of the strip itself happens on the inference engine;
// this package only interprets the returned lines.
package mrz

import (
	"errors"
	"fmt"
	"strings"
)

// Record holds the fields decoded from an MRZ. Dates are in YYYY-MM-DD form.
type Record struct {
	DocumentType   string
	IssuingCountry string
	FullName       string
	DocumentNumber string
	Nationality    string
	BirthDate      string
	ExpiryDate     string
	Sex            string
}

var (
	// ErrNoMRZ means the lines do not form a recognized MRZ layout.
	ErrNoMRZ = errors.New("mrz: no machine-readable zone")
	// ErrChecksum means the document number check digit did not verify.
	ErrChecksum = errors.New("mrz: document number checksum mismatch")
)

const (
	td3LineLen = 44
	td1LineLen = 30
)

// Parse decodes a TD3 (passport, 2x44) or TD1 (ID card, 3x30) zone. Lines
// shorter than the layout length are padded with filler before parsing, since
// OCR tends to trim trailing '<' runs.
func Parse(lines []string) (*Record, error) {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}

	switch {
	case len(cleaned) == 2 && looksLike(cleaned, td3LineLen):
		return parseTD3(pad(cleaned[0], td3LineLen), pad(cleaned[1], td3LineLen))
	case len(cleaned) == 3 && looksLike(cleaned, td1LineLen):
		return parseTD1(pad(cleaned[0], td1LineLen), pad(cleaned[1], td1LineLen), pad(cleaned[2], td1LineLen))
	default:
		return nil, ErrNoMRZ
	}
}

func looksLike(lines []string, width int) bool {
	maxLen := 0
	for _, line := range lines {
		if len(line) > width {
			return false
		}
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	return maxLen > width-7
}

func pad(line string, width int) string {
	if len(line) >= width {
		return line[:width]
	}
	return line + strings.Repeat("<", width-len(line))
}

func parseTD3(line1, line2 string) (*Record, error) {
	if line1[0] != 'P' {
		return nil, ErrNoMRZ
	}

	rec := &Record{
		DocumentType:   strings.Trim(line1[0:2], "<"),
		IssuingCountry: strings.Trim(line1[2:5], "<"),
		FullName:       decodeName(line1[5:44]),
	}

	number := strings.Trim(line2[0:9], "<")
	if !checkDigitOK(line2[0:9], line2[9]) {
		return nil, ErrChecksum
	}
	rec.DocumentNumber = number
	rec.Nationality = strings.Trim(line2[10:13], "<")

	if checkDigitOK(line2[13:19], line2[19]) {
		rec.BirthDate = expandDate(line2[13:19])
	}
	rec.Sex = decodeSex(line2[20])
	if checkDigitOK(line2[21:27], line2[27]) {
		rec.ExpiryDate = expandDate(line2[21:27])
	}
	return rec, nil
}

func parseTD1(line1, line2, line3 string) (*Record, error) {
	doctype := strings.Trim(line1[0:2], "<")
	if doctype == "" || doctype[0] != 'I' && doctype[0] != 'A' && doctype[0] != 'C' {
		return nil, ErrNoMRZ
	}

	rec := &Record{
		DocumentType:   doctype,
		IssuingCountry: strings.Trim(line1[2:5], "<"),
		FullName:       decodeName(line3),
	}

	number := strings.Trim(line1[5:14], "<")
	if !checkDigitOK(line1[5:14], line1[14]) {
		return nil, ErrChecksum
	}
	rec.DocumentNumber = number

	if checkDigitOK(line2[0:6], line2[6]) {
		rec.BirthDate = expandDate(line2[0:6])
	}
	rec.Sex = decodeSex(line2[7])
	if checkDigitOK(line2[8:14], line2[14]) {
		rec.ExpiryDate = expandDate(line2[8:14])
	}
	rec.Nationality = strings.Trim(line2[15:18], "<")
	return rec, nil
}

// checkDigitOK verifies an ICAO 9303 check digit over the 7-3-1 weighting.
func checkDigitOK(field string, digit byte) bool {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(field); i++ {
		v := charValue(field[i])
		if v < 0 {
			return false
		}
		sum += v * weights[i%3]
	}
	return digit == byte('0'+sum%10)
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c == '<':
		return 0
	default:
		return -1
	}
}

// expandDate converts a YYMMDD field to YYYY-MM-DD. Two-digit years above 30
// fall into the 1900s, everything else into the 2000s.
func expandDate(yymmdd string) string {
	if len(yymmdd) != 6 || !allDigits(yymmdd) {
		return ""
	}
	century := "20"
	if yymmdd[0] > '3' || (yymmdd[0] == '3' && yymmdd[1] > '0') {
		century = "19"
	}
	return fmt.Sprintf("%s%s-%s-%s", century, yymmdd[0:2], yymmdd[2:4], yymmdd[4:6])
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func decodeSex(c byte) string {
	switch c {
	case 'M':
		return "M"
	case 'F':
		return "F"
	default:
		return ""
	}
}

// decodeName turns "SURNAME<<GIVEN<NAMES" into "Given Names Surname".
func decodeName(field string) string {
	field = strings.Trim(field, "<")
	surname := field
	given := ""
	if idx := strings.Index(field, "<<"); idx >= 0 {
		surname = field[:idx]
		given = field[idx+2:]
	}
	parts := []string{}
	for _, p := range strings.Split(given, "<") {
		if p != "" {
			parts = append(parts, titleWord(p))
		}
	}
	for _, p := range strings.Split(surname, "<") {
		if p != "" {
			parts = append(parts, titleWord(p))
		}
	}
	return strings.Join(parts, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
