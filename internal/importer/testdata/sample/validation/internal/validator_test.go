package internal

import "testing"

func TestValidate(t *testing.T) {
	if err := (IdValidatorImpl{}).Validate(""); err != ErrEmptyID {
		t.Fatalf("got %v", err)
	}
}
