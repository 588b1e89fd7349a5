package docfields

import (
	"testing"

	"github.com/example/kyc-api/internal/faceengine"
)

func wordsFrom(conf float32, tokens ...string) []faceengine.Word {
	words := make([]faceengine.Word, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, faceengine.Word{Text: tok, Confidence: conf})
	}
	return words
}

func TestExtractFrontPageFields(t *testing.T) {
	front := wordsFrom(88,
		"Republic", "of", "Utopia",
		"JOHN", "DOE",
		"Nationality:", "UTO",
		"1990-04-01",
		"A1234567",
		"Expiry:", "2030-12-31",
	)

	fields, conf := Extract(front)

	if fields.FullName != "John Doe" {
		t.Fatalf("unexpected name: %q", fields.FullName)
	}
	if fields.BirthDate != "1990-04-01" {
		t.Fatalf("unexpected birth date: %q", fields.BirthDate)
	}
	if fields.DocumentNumber != "A1234567" {
		t.Fatalf("unexpected document number: %q", fields.DocumentNumber)
	}
	if fields.Nationality != "UTO" {
		t.Fatalf("unexpected nationality: %q", fields.Nationality)
	}
	if fields.ExpiryDate != "2030-12-31" {
		t.Fatalf("unexpected expiry: %q", fields.ExpiryDate)
	}
	if conf != 0.88 {
		t.Fatalf("unexpected confidence: %v", conf)
	}
}

func TestExtractFirstPageWins(t *testing.T) {
	front := wordsFrom(70, "JANE", "ROE", "12.05.1985")
	back := wordsFrom(90, "MAX", "MUSTERMANN", "01.01.2000", "Address:", "1", "Main", "Street")

	fields, conf := Extract(front, back)

	if fields.FullName != "Jane Roe" {
		t.Fatalf("expected front name to win, got %q", fields.FullName)
	}
	if fields.BirthDate != "1985-05-12" {
		t.Fatalf("unexpected birth date: %q", fields.BirthDate)
	}
	if fields.Address != "1 Main Street" {
		t.Fatalf("expected address from back page, got %q", fields.Address)
	}
	if conf != 0.9 {
		t.Fatalf("expected best page confidence, got %v", conf)
	}
}

func TestExtractDefaultConfidence(t *testing.T) {
	front := wordsFrom(-1, "JOHN", "DOE")

	_, conf := Extract(front)
	if conf != DefaultConfidence {
		t.Fatalf("expected default confidence %v, got %v", DefaultConfidence, conf)
	}
}

func TestExtractSkipsEmptyPages(t *testing.T) {
	fields, conf := Extract(nil, nil)
	if fields.FullName != "" || fields.DocumentNumber != "" {
		t.Fatalf("expected empty fields, got %+v", fields)
	}
	if conf != DefaultConfidence {
		t.Fatalf("unexpected confidence: %v", conf)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"1990-04-01": "1990-04-01",
		"1990/04/01": "1990-04-01",
		"01.04.1990": "1990-04-01",
		"31-12-1999": "1999-12-31",
		"not-a-date": "",
		"04-1990":    "",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}
