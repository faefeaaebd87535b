package otpgen_test

import (
	"testing"

	"github.com/creachadair/totpcli/otpgen"
)

func TestParseSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // "" means an error is expected
	}{
		{"Plain", "JBSWY3DPEHPK3PXP", "JBSWY3DPEHPK3PXP"},
		{"LowerCase", "jbswy3dpehpk3pxp", "JBSWY3DPEHPK3PXP"},
		{"Grouped", "jbsw y3dp ehpk 3pxp", "JBSWY3DPEHPK3PXP"},
		{"Dashed", "JBSW-Y3DP-EHPK-3PXP", "JBSWY3DPEHPK3PXP"},
		{"Padded", "MFRGGZDF====", "MFRGGZDF"},
		{"Surrounding", "  ABC123\n", "ABC123"},
		{"URL",
			"otpauth://totp/Example:alice@google.com?issuer=Example&secret=JBSWY3DPEHPK3PXP",
			"JBSWY3DPEHPK3PXP"},
		{"URLExtraParams",
			"otpauth://totp/Example:alice?secret=JBSWY3DPEHPK3PXP&algorithm=SHA1&digits=6&period=30",
			"JBSWY3DPEHPK3PXP"},

		{"Empty", "", ""},
		{"Blank", "   ", ""},
		{"OnlyPadding", "====", ""},
		{"HOTPURL", "otpauth://hotp/Example:alice?secret=JBSWY3DPEHPK3PXP&counter=0", ""},
		{"MalformedURL", "otpauth://totp/%zz", ""},
		{"URLNoSecret", "otpauth://totp/Example:alice?issuer=Example", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := otpgen.ParseSecret(tc.input)
			if tc.want == "" {
				if err == nil {
					t.Fatalf("ParseSecret(%q): got %q, want error", tc.input, got)
				}
				t.Logf("ParseSecret: got expected error: %v", err)
				return
			}
			if err != nil {
				t.Fatalf("ParseSecret(%q): unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseSecret(%q): got %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// The secret extracted from a URL must be identical to the same secret given
// directly.
func TestParseSecretURLEquivalence(t *testing.T) {
	const raw = "ABC123"
	fromSecret, err := otpgen.ParseSecret(raw)
	if err != nil {
		t.Fatalf("ParseSecret(%q): unexpected error: %v", raw, err)
	}
	fromURL, err := otpgen.ParseSecret("otpauth://totp/Test:x?secret=" + raw)
	if err != nil {
		t.Fatalf("ParseSecret(url): unexpected error: %v", err)
	}
	if fromSecret != fromURL {
		t.Errorf("Secret mismatch: flag form %q, URL form %q", fromSecret, fromURL)
	}
}
