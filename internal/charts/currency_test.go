package charts

import "testing"

func TestCurrencySymbol(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"USD", "$"},
		{"usd", "$"},
		{" eur ", "€"},
		{"PLN", "zł"},
		{"XYZ", "$"},
		{"", "$"},
		{"12", "$"},
	}
	for _, tc := range cases {
		if got := CurrencySymbol(tc.code); got != tc.want {
			t.Errorf("CurrencySymbol(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestCurrencySymbolValidUnknown(t *testing.T) {
	// ISO-valid but not in the pinned table falls back to the code itself.
	if got := CurrencySymbol("IDR"); got != "IDR" {
		t.Fatalf("CurrencySymbol(IDR) = %q, want IDR", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount("USD", 12.4); got != "$12.40" {
		t.Fatalf("FormatAmount = %q, want $12.40", got)
	}
	if got := FormatAmount("EUR", 0); got != "€0.00" {
		t.Fatalf("FormatAmount = %q, want €0.00", got)
	}
}
