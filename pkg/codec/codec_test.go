package codec

import (
	"strings"
	"testing"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	cases := []string{"{}", `{"state":{"reported":{"power":true}}}`, "", "hello world", strings.Repeat("x", 100)}
	for _, plaintext := range cases {
		ciphertextHex, err := Encrypt("12345678", plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		got, err := Decrypt("12345678", ciphertextHex)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got != plaintext {
			t.Errorf("roundtrip mismatch: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptionFormat(t *testing.T) {
	ciphertextHex, err := Encrypt("ABCDEF12", "test")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if len(ciphertextHex)%2 != 0 {
		t.Errorf("ciphertext hex should have even length, got %d", len(ciphertextHex))
	}
	for _, c := range ciphertextHex {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			t.Errorf("ciphertext hex contains non-uppercase-hex char %q", c)
		}
	}

	frame := BuildFrame("ABCDEF12", ciphertextHex)
	if !strings.HasPrefix(frame, "ABCDEF12") {
		t.Errorf("frame should start with the counter, got %q", frame[:8])
	}
	if len(frame) < 8+64 {
		t.Errorf("frame too short: %d", len(frame))
	}
	if (len(frame)-8-64)%2 != 0 {
		t.Errorf("ciphertext section should have even length")
	}
}

func TestDigestDeterministic(t *testing.T) {
	d1 := Digest("00000001", "AABBCCDD")
	d2 := Digest("00000001", "AABBCCDD")
	if d1 != d2 {
		t.Errorf("Digest should be deterministic: %q != %q", d1, d2)
	}
	if len(d1) != 64 {
		t.Errorf("digest should be 64 hex chars, got %d", len(d1))
	}
}

func TestVerifySuccess(t *testing.T) {
	ciphertextHex, err := Encrypt("00000001", "payload")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	frame := BuildFrame("00000001", ciphertextHex)

	counterHex, gotCiphertext, err := Verify(frame)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if counterHex != "00000001" {
		t.Errorf("counter = %q, want 00000001", counterHex)
	}
	if gotCiphertext != ciphertextHex {
		t.Errorf("ciphertext = %q, want %q", gotCiphertext, ciphertextHex)
	}
}

func TestVerifyDigestMismatch(t *testing.T) {
	ciphertextHex, err := Encrypt("00000001", "payload")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	frame := BuildFrame("00000001", ciphertextHex)

	corrupted := frame[:len(frame)-64] + strings.Repeat("0", 64)
	if corrupted == frame {
		corrupted = frame[:len(frame)-64] + strings.Repeat("1", 64)
	}

	_, _, err = Verify(corrupted)
	if !airerr.Is(err, airerr.KindDigestMismatch) {
		t.Fatalf("expected KindDigestMismatch, got %v", err)
	}
}

func TestVerifyFlippedCounterCharFails(t *testing.T) {
	ciphertextHex, err := Encrypt("00000001", "payload")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	frame := BuildFrame("00000001", ciphertextHex)

	flipped := "00000002" + frame[8:]
	_, _, err = Verify(flipped)
	if !airerr.Is(err, airerr.KindDigestMismatch) {
		t.Fatalf("expected KindDigestMismatch for flipped counter, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	tests := []string{
		"short",
		"ZZZZZZZZ" + strings.Repeat("A", 64) + strings.Repeat("B", 64),
		"",
	}
	for _, frame := range tests {
		_, _, err := Verify(frame)
		if err == nil {
			t.Errorf("Verify(%q) should have failed", frame)
		}
	}
}

func TestDecryptInvalidPaddingIsMalformed(t *testing.T) {
	ciphertextHex, err := Encrypt("00000001", "payload")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	// Corrupt the last ciphertext byte so padding no longer verifies.
	corruptedCiphertext := ciphertextHex[:len(ciphertextHex)-2] + "FF"
	_, err = Decrypt("00000001", corruptedCiphertext)
	if !airerr.Is(err, airerr.KindMalformedFrame) {
		t.Fatalf("expected KindMalformedFrame for corrupted ciphertext, got %v", err)
	}
}

func TestMultipleEncryptionsDifferOnDifferentCounters(t *testing.T) {
	c1, err := Encrypt("00000001", "same data")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	c2, err := Encrypt("00000002", "same data")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if c1 == c2 {
		t.Errorf("ciphertexts under different counters should differ")
	}
	p1, err := Decrypt("00000001", c1)
	if err != nil || p1 != "same data" {
		t.Errorf("decrypt c1 failed: %v, %q", err, p1)
	}
	p2, err := Decrypt("00000002", c2)
	if err != nil || p2 != "same data" {
		t.Errorf("decrypt c2 failed: %v, %q", err, p2)
	}
}
