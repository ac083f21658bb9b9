package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already quantized", input: "10.00", want: "10"},
		{name: "half rounds up", input: "12.345", want: "12.35"},
		{name: "half rounds away from zero when negative", input: "-12.345", want: "-12.35"},
		{name: "truncates below half", input: "3.333", want: "3.33"},
		{name: "repeating third", input: "3.33333333", want: "3.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)

			got := RoundMoney(d)

			if got.String() != tt.want {
				t.Errorf("RoundMoney(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundQuantity(t *testing.T) {
	d := decimal.RequireFromString("2.123456789")

	got := RoundQuantity(d)

	if got.String() != "2.12345679" {
		t.Errorf("RoundQuantity = %s, want 2.12345679", got)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "100.50", want: "100.5"},
		{name: "surrounding whitespace", input: "  12.345 ", want: "12.35"},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.String() != tt.want {
				t.Errorf("ParseMoney(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	_, err := ParseQuantity("not-a-number")

	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
