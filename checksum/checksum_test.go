package checksum

import (
	"strings"
	"testing"
)

func TestSignKnownVector(t *testing.T) {
	got, err := Sign("session", "abc")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if got != "session=abc|D9D2E670" {
		t.Fatalf("unexpected signed cookie: %q", got)
	}
}

func TestSignRejectsDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "name with equals", key: "a=b", value: "v", wantErr: ErrNameInvalid},
		{name: "name with pipe", key: "a|b", value: "v", wantErr: ErrNameInvalid},
		{name: "value with pipe", key: "a", value: "v|w", wantErr: ErrValueInvalid},
		{name: "value with equals is allowed", key: "a", value: "v=w", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sign(tt.key, tt.value)
			if err != tt.wantErr {
				t.Fatalf("Sign(%q, %q) err = %v, want %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "simple", key: "session", value: "abc"},
		{name: "empty value", key: "flag", value: ""},
		{name: "value with equals", key: "pref", value: "theme=dark"},
		{name: "unicode value", key: "greet", value: "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := Sign(tt.key, tt.value)
			if err != nil {
				t.Fatalf("sign failed: %v", err)
			}

			res := Verify(signed)
			if !res.Valid {
				t.Fatalf("round-trip verify failed: %+v", res)
			}
			if res.Payload != tt.key+"="+tt.value {
				t.Fatalf("payload = %q, want %q", res.Payload, tt.key+"="+tt.value)
			}
		})
	}
}

func TestVerifyDeterministic(t *testing.T) {
	a, err := Sign("session", "abc")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	b, err := Sign("session", "abc")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if a != b {
		t.Fatalf("signing is not deterministic: %q vs %q", a, b)
	}
}

func TestVerifyWrongChecksum(t *testing.T) {
	res := Verify("session=abc|FFFFFFFF")
	if res.Valid {
		t.Fatal("verify accepted a wrong checksum")
	}
	if res.ExpectedHex != "D9D2E670" {
		t.Fatalf("expected hex = %q, want D9D2E670", res.ExpectedHex)
	}
	if res.ActualHex != "FFFFFFFF" {
		t.Fatalf("actual hex = %q, want FFFFFFFF", res.ActualHex)
	}
}

func TestVerifyCaseInsensitiveHex(t *testing.T) {
	res := Verify("session=abc|d9d2e670")
	if !res.Valid {
		t.Fatalf("lowercase hex suffix rejected: %+v", res)
	}
}

func TestVerifyNoDelimiter(t *testing.T) {
	res := Verify("session=abc")
	if res.Valid {
		t.Fatal("verify accepted input without delimiter")
	}
	if res.ExpectedHex != NoChecksum {
		t.Fatalf("expected sentinel %q, got %q", NoChecksum, res.ExpectedHex)
	}
}

func TestVerifySplitsOnLastDelimiter(t *testing.T) {
	// The checksum suffix always follows the last delimiter even if an
	// attacker plants earlier ones.
	payload := "a=b"
	signed, err := Sign("a", "b")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	suffix := signed[strings.LastIndex(signed, Delimiter)+1:]

	res := Verify(payload + "|junk|" + suffix)
	if res.Payload != payload+"|junk" {
		t.Fatalf("payload = %q, want split on last delimiter", res.Payload)
	}
	if res.Valid {
		t.Fatal("tampered payload verified")
	}
}

func TestVerifyTamperDetection(t *testing.T) {
	signed, err := Sign("session", "abc")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	for i := 0; i < len(signed); i++ {
		mutated := []byte(signed)
		mutated[i] ^= 0x01
		if string(mutated) == signed {
			continue
		}
		if res := Verify(string(mutated)); res.Valid {
			t.Fatalf("flip at index %d still verified: %q", i, mutated)
		}
	}
}

func FuzzVerify(f *testing.F) {
	f.Add("session=abc|D9D2E670")
	f.Add("session=abc")
	f.Add("|")
	f.Add("")
	f.Add("a=b|junk|00000000")

	f.Fuzz(func(t *testing.T, cookie string) {
		res := Verify(cookie)
		if res.Valid {
			// A valid result must re-verify from its own payload.
			again := Verify(res.Payload + Delimiter + res.ActualHex)
			if !again.Valid {
				t.Fatalf("valid result did not re-verify: %+v", res)
			}
		}
	})
}
