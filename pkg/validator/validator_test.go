package validator

import (
	"testing"
)

type invitePayload struct {
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note" validate:"omitempty,max=10"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(invitePayload{Email: "driver@example.com"})
	if err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(invitePayload{Email: "not-an-email", Note: "way too long note"})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d: %v", len(failures), failures)
	}
	if failures[0].Field != "email" {
		t.Fatalf("expected json tag name, got %q", failures[0].Field)
	}
}
