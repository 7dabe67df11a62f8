package authgate

import (
	"strings"
	"testing"
	"time"
)

func rfcManager(algorithm string, digits int) *totpManager {
	return newTOTPManager(TOTPConfig{
		Issuer:    "authgate",
		Digits:    digits,
		Period:    30,
		Algorithm: algorithm,
	})
}

func TestTOTPVerifyRFCVectorsSHA1(t *testing.T) {
	m := rfcManager("SHA1", 8)
	secret := base32NoPad.EncodeToString([]byte("12345678901234567890"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(secret, tc.code, 0, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA1 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPVerifyRFCVectorsSHA256(t *testing.T) {
	m := rfcManager("SHA256", 8)
	secret := base32NoPad.EncodeToString([]byte("12345678901234567890123456789012"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "46119246"},
		{1111111109, "68084774"},
		{1111111111, "67062674"},
		{1234567890, "91819424"},
		{2000000000, "90698825"},
		{20000000000, "77737706"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(secret, tc.code, 0, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA256 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPVerifyRFCVectorsSHA512(t *testing.T) {
	m := rfcManager("SHA512", 8)
	secret := base32NoPad.EncodeToString([]byte("1234567890123456789012345678901234567890123456789012345678901234"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "90693936"},
		{1111111109, "25091201"},
		{1111111111, "99943326"},
		{1234567890, "93441116"},
		{2000000000, "38618901"},
		{20000000000, "47863826"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(secret, tc.code, 0, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("SHA512 vector failed at t=%d, ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestTOTPDriftWindowAcceptsAdjacentStep(t *testing.T) {
	m := rfcManager("SHA1", 6)
	raw := []byte("12345678901234567890")
	secret := base32NoPad.EncodeToString(raw)
	now := time.Unix(1234567890, 0)
	prevCounter := (now.Unix() / 30) - 1
	code, err := hotpCode(raw, prevCounter, 6, "SHA1")
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}

	ok, err := m.VerifyCode(secret, code, 1, now)
	if err != nil || !ok {
		t.Fatalf("expected skew code accepted, ok=%v err=%v", ok, err)
	}

	ok, err = m.VerifyCode(secret, code, 0, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected previous-step code rejected with zero skew")
	}
}

func TestTOTPWrongDigitsRejected(t *testing.T) {
	m := rfcManager("SHA1", 6)
	secret := base32NoPad.EncodeToString([]byte("12345678901234567890"))

	ok, err := m.VerifyCode(secret, "12345678", 1, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong-length code to be rejected")
	}

	ok, err = m.VerifyCode(secret, "12a456", 1, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected non-numeric code to be rejected")
	}
}

func TestTOTPGenerateSecretShape(t *testing.T) {
	m := rfcManager("SHA1", 6)

	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		secret, err := m.GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret failed: %v", err)
		}
		if len(secret) != 32 {
			t.Fatalf("expected 32 base32 characters, got %d", len(secret))
		}
		if strings.Contains(secret, "=") {
			t.Fatal("expected unpadded base32")
		}
		if _, err := base32NoPad.DecodeString(secret); err != nil {
			t.Fatalf("secret does not decode: %v", err)
		}
		if seen[secret] {
			t.Fatal("duplicate secret generated")
		}
		seen[secret] = true
	}
}

func TestTOTPProvisionURI(t *testing.T) {
	m := rfcManager("SHA1", 6)
	secret := base32NoPad.EncodeToString([]byte("12345678901234567890"))

	uri := m.ProvisionURI(secret, "alice")
	if !strings.HasPrefix(uri, "otpauth://totp/authgate:alice?") {
		t.Fatalf("unexpected URI prefix: %s", uri)
	}
	for _, want := range []string{"secret=" + secret, "issuer=authgate", "digits=6", "period=30", "algorithm=SHA1"} {
		if !strings.Contains(uri, want) {
			t.Fatalf("URI missing %q: %s", want, uri)
		}
	}
}
