// Package docfields pulls structured identity fields out of free-text OCR
// output. It is deliberately heuristic: MRZ data always wins over anything
// extracted here.
package docfields

import (
	"regexp"
	"strings"

	"github.com/example/kyc-api/internal/faceengine"
)

// Fields are the identity attributes recoverable from document text. Dates
// are normalised to YYYY-MM-DD where the source format allows it.
type Fields struct {
	FullName       string
	BirthDate      string
	DocumentNumber string
	Nationality    string
	ExpiryDate     string
	Address        string
}

// DefaultConfidence is reported when OCR returned no per-word confidences.
const DefaultConfidence = 0.4

var (
	namePattern = regexp.MustCompile(`\b([A-Z]{2,}(?:\s+[A-Z]{2,}){1,3})\b`)

	dobPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}[-/.]\d{2}[-/.]\d{2}`),
		regexp.MustCompile(`\d{2}[-/.]\d{2}[-/.]\d{4}`),
	}

	docNumPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z]{1,2}\d{6,9})\b`),
		regexp.MustCompile(`\b(\d{8,10})\b`),
	}

	nationalityPattern = regexp.MustCompile(`(?i)\b(?:Nationality|Citizenship)\s*[:\-]?\s*([A-Za-z]{3,})\b`)
	expiryPattern      = regexp.MustCompile(`(?i)(?:Expiry|Expires|Valid\s*Until)\s*[:\-]?\s*([0-9./-]{8,10})`)
	addressPattern     = regexp.MustCompile(`(?i)(?:Address|Residence)\s*[:\-]?\s*(.+)$`)

	ymd = regexp.MustCompile(`^(\d{4})[-/.](\d{2})[-/.](\d{2})`)
	dmy = regexp.MustCompile(`^(\d{2})[-/.](\d{2})[-/.](\d{4})`)
)

// Extract scans the OCR words of each supplied page, front first. The first
// page that yields a field keeps it. The returned confidence is the best
// per-page mean word confidence scaled to 0..1.
func Extract(pages ...[]faceengine.Word) (Fields, float64) {
	var fields Fields
	best := 0.0
	sawConfidence := false

	for _, words := range pages {
		if len(words) == 0 {
			continue
		}
		text := joinWords(words)
		if conf, ok := pageConfidence(words); ok {
			sawConfidence = true
			if conf > best {
				best = conf
			}
		}
		scanPage(&fields, text)
	}

	if !sawConfidence {
		best = DefaultConfidence
	}
	return fields, best
}

func scanPage(fields *Fields, text string) {
	if fields.FullName == "" {
		if m := namePattern.FindString(text); m != "" {
			fields.FullName = titleCase(m)
		}
	}

	if fields.BirthDate == "" {
		for _, pat := range dobPatterns {
			if m := pat.FindString(text); m != "" {
				fields.BirthDate = NormalizeDate(m)
				break
			}
		}
	}

	if fields.DocumentNumber == "" {
		for _, pat := range docNumPatterns {
			if m := pat.FindStringSubmatch(text); m != nil {
				fields.DocumentNumber = m[1]
				break
			}
		}
	}

	if fields.Nationality == "" {
		if m := nationalityPattern.FindStringSubmatch(text); m != nil {
			fields.Nationality = strings.ToUpper(m[1])
		}
	}

	if fields.ExpiryDate == "" {
		if m := expiryPattern.FindStringSubmatch(text); m != nil {
			if normalized := NormalizeDate(m[1]); normalized != "" {
				fields.ExpiryDate = normalized
			} else {
				fields.ExpiryDate = m[1]
			}
		}
	}

	if fields.Address == "" {
		if m := addressPattern.FindStringSubmatch(text); m != nil {
			fields.Address = strings.TrimSpace(m[1])
		}
	}
}

// NormalizeDate canonicalises YYYY-MM-DD and DD-MM-YYYY style dates (with
// '-', '/', or '.' separators) to YYYY-MM-DD. Unrecognised input yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if m := ymd.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	if m := dmy.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return ""
}

func joinWords(words []faceengine.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// pageConfidence averages the non-negative word confidences. Engines report
// -1 for tokens without a recognition score, mirroring Tesseract.
func pageConfidence(words []faceengine.Word) (float64, bool) {
	sum := 0.0
	n := 0
	for _, w := range words {
		if w.Confidence < 0 {
			continue
		}
		sum += float64(w.Confidence)
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := sum / float64(n)
	if mean > 100 {
		mean = 100
	}
	if mean < 0 {
		mean = 0
	}
	return mean / 100.0, true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
