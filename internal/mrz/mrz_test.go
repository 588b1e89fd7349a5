package mrz

import "testing"

func TestParseTD3Passport(t *testing.T) {
	lines := []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	rec, err := Parse(lines)
	if err != nil {
		t.Fatalf("expected parse success, got error: %v", err)
	}
	if rec.FullName != "Anna Maria Eriksson" {
		t.Fatalf("unexpected name: %q", rec.FullName)
	}
	if rec.DocumentNumber != "L898902C3" {
		t.Fatalf("unexpected document number: %q", rec.DocumentNumber)
	}
	if rec.Nationality != "UTO" {
		t.Fatalf("unexpected nationality: %q", rec.Nationality)
	}
	if rec.BirthDate != "1974-08-12" {
		t.Fatalf("unexpected birth date: %q", rec.BirthDate)
	}
	if rec.ExpiryDate != "2012-04-15" {
		t.Fatalf("unexpected expiry date: %q", rec.ExpiryDate)
	}
	if rec.Sex != "F" {
		t.Fatalf("unexpected sex: %q", rec.Sex)
	}
}

func TestParseTD3TrimmedFiller(t *testing.T) {
	// OCR output often drops the trailing filler run.
	lines := []string{
		"P<UTOERIKSSON<<ANNA<MARIA",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	rec, err := Parse(lines)
	if err != nil {
		t.Fatalf("expected parse success, got error: %v", err)
	}
	if rec.FullName != "Anna Maria Eriksson" {
		t.Fatalf("unexpected name: %q", rec.FullName)
	}
}

func TestParseTD1IdentityCard(t *testing.T) {
	lines := []string{
		"I<UTOD231458907<<<<<<<<<<<<<<<",
		"7408122F1204159UTO<<<<<<<<<<<6",
		"ERIKSSON<<ANNA<MARIA<<<<<<<<<<",
	}

	rec, err := Parse(lines)
	if err != nil {
		t.Fatalf("expected parse success, got error: %v", err)
	}
	if rec.DocumentNumber != "D23145890" {
		t.Fatalf("unexpected document number: %q", rec.DocumentNumber)
	}
	if rec.FullName != "Anna Maria Eriksson" {
		t.Fatalf("unexpected name: %q", rec.FullName)
	}
	if rec.BirthDate != "1974-08-12" {
		t.Fatalf("unexpected birth date: %q", rec.BirthDate)
	}
	if rec.Nationality != "UTO" {
		t.Fatalf("unexpected nationality: %q", rec.Nationality)
	}
}

func TestParseRejectsBadDocumentChecksum(t *testing.T) {
	lines := []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C37UTO7408122F1204159ZE184226B<<<<<10",
	}

	if _, err := Parse(lines); err != ErrChecksum {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}
}

func TestParseDropsFieldOnBadDateChecksum(t *testing.T) {
	lines := []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408121F1204159ZE184226B<<<<<10",
	}

	rec, err := Parse(lines)
	if err != nil {
		t.Fatalf("expected parse success, got error: %v", err)
	}
	if rec.BirthDate != "" {
		t.Fatalf("expected birth date dropped, got %q", rec.BirthDate)
	}
	if rec.ExpiryDate != "2012-04-15" {
		t.Fatalf("expected expiry kept, got %q", rec.ExpiryDate)
	}
}

func TestParseRejectsUnrecognizedLayout(t *testing.T) {
	if _, err := Parse([]string{"HELLO"}); err != ErrNoMRZ {
		t.Fatalf("expected ErrNoMRZ, got %v", err)
	}
	if _, err := Parse(nil); err != ErrNoMRZ {
		t.Fatalf("expected ErrNoMRZ, got %v", err)
	}
}

func TestCheckDigit(t *testing.T) {
	cases := []struct {
		field string
		digit byte
		ok    bool
	}{
		{"L898902C3", '6', true},
		{"740812", '2', true},
		{"120415", '9', true},
		{"D23145890", '7', true},
		{"L898902C3", '5', false},
		{"74@812", '2', false},
	}
	for _, tc := range cases {
		if got := checkDigitOK(tc.field, tc.digit); got != tc.ok {
			t.Errorf("checkDigitOK(%q, %q) = %v, want %v", tc.field, tc.digit, got, tc.ok)
		}
	}
}

func TestExpandDateCenturyRule(t *testing.T) {
	cases := map[string]string{
		"740812": "1974-08-12",
		"120415": "2012-04-15",
		"300101": "2030-01-01",
		"310101": "1931-01-01",
		"31010x": "",
	}
	for in, want := range cases {
		if got := expandDate(in); got != want {
			t.Errorf("expandDate(%q) = %q, want %q", in, got, want)
		}
	}
}
