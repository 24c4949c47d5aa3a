package rules

import (
	"errors"
	"testing"
)

func TestValidateDefault(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidateBadPayout(t *testing.T) {
	c := Default()
	c.BlackjackPayout = 2.0
	if err := c.Validate(); !errors.Is(err, ErrBadBlackjackPayout) {
		t.Errorf("Validate() = %v, want ErrBadBlackjackPayout", err)
	}
}

func TestValidateShoeTooLarge(t *testing.T) {
	c := Default()
	c.ShoeSize = 25
	if err := c.Validate(); !errors.Is(err, ErrShoeTooLarge) {
		t.Errorf("Validate() = %v, want ErrShoeTooLarge", err)
	}
}

func TestValidateNoPeek(t *testing.T) {
	c := Default()
	c.DealerPeeks = false
	if err := c.Validate(); !errors.Is(err, ErrPeekRequired) {
		t.Errorf("Validate() = %v, want ErrPeekRequired", err)
	}
}
