package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"12,50", 1250, true},
		{"1.234,56", 123456, true},
		{"  7 ", 700, true},
		{"0,01", 1, true},
		{"0,005", 1, true},
		{"12.50", 125000, true}, // dots are thousands separators
		{"1.000.000", 100000000, true},
		{"0", 0, false},
		{"0,00", 0, false},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"-5,00", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		str   string
		brl   string
	}{
		{0, "0,00", "R$ 0,00"},
		{5, "0,05", "R$ 0,05"},
		{1250, "12,50", "R$ 12,50"},
		{123456, "1.234,56", "R$ 1.234,56"},
		{100000000, "1.000.000,00", "R$ 1.000.000,00"},
		{-4500, "-45,00", "-R$ 45,00"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if got := m.String(); got != tc.str {
			t.Errorf("String(%d) = %q, want %q", tc.cents, got, tc.str)
		}
		if got := m.BRL(); got != tc.brl {
			t.Errorf("BRL(%d) = %q, want %q", tc.cents, got, tc.brl)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	tests := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		2000:   "20.00",
		123456: "1234.56",
	}
	for cents, want := range tests {
		if got := (Money{Cents: cents}).Decimal().StringFixed(2); got != want {
			t.Errorf("Money{%d}.Decimal() = %s, want %s", cents, got, want)
		}
	}
}
