package http

import (
	"errors"
	"strings"
	"testing"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		ReviewerID string `validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{ReviewerID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	// invalid samples
	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		bad := P{ReviewerID: s}
		err := cv.Validate(bad)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		found := false
		for _, e := range fe {
			if e.Field == "ReviewerID" && strings.Contains(e.Message, "32-char lowercase hex") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestClaimStatusValidation(t *testing.T) {
	type Q struct {
		Status string `validate:"omitempty,claimstatus"`
	}
	cv := NewValidator()

	for _, v := range []string{"", "Pending", "Under Review", "Pending Approval", "Approved", "Denied"} {
		if err := cv.Validate(Q{Status: v}); err != nil {
			t.Fatalf("expected claimstatus OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"pending", "Closed", "UnderReview"} {
		err := cv.Validate(Q{Status: v})
		if err == nil {
			t.Fatalf("expected claimstatus error for %q", v)
		}
		if !containsFieldMsg(ToFieldErrors(err), "Status", "must be one of") {
			t.Fatalf("expected status message for %q, got %+v", v, ToFieldErrors(err))
		}
	}
}

func TestDec2OnOptionalAmount(t *testing.T) {
	type P struct {
		Amount *float64 `validate:"omitempty,gte=0,dec2"`
	}
	cv := NewValidator()
	good, bad, neg := 12.5, 12.505, -1.0

	if err := cv.Validate(P{}); err != nil {
		t.Fatalf("nil amount must pass, got %v", err)
	}
	if err := cv.Validate(P{Amount: &good}); err != nil {
		t.Fatalf("12.5 must pass, got %v", err)
	}
	if err := cv.Validate(P{Amount: &bad}); err == nil || !containsFieldMsg(ToFieldErrors(err), "Amount", "2 decimal") {
		t.Fatalf("12.505 must fail dec2, got %v", err)
	}
	if err := cv.Validate(P{Amount: &neg}); err == nil || !containsFieldMsg(ToFieldErrors(err), "Amount", "greater than or equal") {
		t.Fatalf("negative must fail gte, got %v", err)
	}
}

func TestDec2Validation(t *testing.T) {
	type P struct {
		Amount float64 `validate:"dec2"`
	}
	cv := NewValidator()

	for _, v := range []float64{1.29, 2.00, 0.9, 1.2} {
		if err := cv.Validate(P{Amount: v}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []float64{1.234, 2.9999} {
		err := cv.Validate(P{Amount: v})
		if err == nil {
			t.Fatalf("expected dec2 error for %v", v)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "Amount", "at most 2 decimal places") {
			t.Fatalf("expected 'at most 2 decimal places' for %v, got %+v", v, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name string  `validate:"required"`
		Min  int     `validate:"gte=10"`
		Max  int     `validate:"lte=5"`
		Amt  float64 `validate:"dec2,gte=0,lte=1000"`
	}
	cv := NewValidator()

	// Intentionally violate all
	err := cv.Validate(P{
		Name: "",    // required
		Min:  9,     // gte=10
		Max:  6,     // lte=5
		Amt:  1.333, // dec2 triggers first
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	// required
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	// gte
	if !containsFieldMsg(fe, "Min", "greater than or equal to 10") {
		t.Fatalf("missing gte message for Min: %+v", fe)
	}
	// lte
	if !containsFieldMsg(fe, "Max", "less than or equal to 5") {
		t.Fatalf("missing lte message for Max: %+v", fe)
	}
	if !containsFieldMsg(fe, "Amt", "at most 2 decimal places") {
		t.Fatalf("missing dec2 message for Amt: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
