// Package codec implements the wire-level cryptography for the
// air-purifier control protocol: AES-128-CBC encryption, PKCS#7
// padding, and a SHA-256 digest over hex-encoded frame parts. Every
// function here is pure: no I/O, no package-level mutable state other
// than the fixed SecretKey.
package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
)

// SecretKey is the fixed 8-byte ASCII pre-shared secret used by every
// device and client in this ecosystem. Build-time constant, not
// configurable — preserving it verbatim is required for wire
// compatibility with deployed devices.
const SecretKey = "JiangPan"

const (
	counterHexLen = 8
	digestHexLen  = 64
	blockSize     = aes.BlockSize // 16
)

// keyMaterial derives the 16-byte AES-128 key from SecretKey and the
// counter's ASCII hex representation. The protocol reuses the same
// 16 bytes as the CBC initialization vector — an unusual choice, but
// one that must be preserved to interoperate with real devices.
func keyMaterial(counterHex string) ([]byte, error) {
	if len(counterHex) != counterHexLen {
		return nil, airerr.New(airerr.KindMalformedFrame, "codec.keyMaterial", nil)
	}
	return append([]byte(SecretKey), []byte(counterHex)...), nil
}

func pkcs7Pad(data []byte, size int) []byte {
	padLen := size - len(data)%size
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(data, padding...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%size != 0 {
		return nil, airerr.New(airerr.KindMalformedFrame, "codec.pkcs7Unpad", nil)
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > size || padLen > n {
		return nil, airerr.New(airerr.KindMalformedFrame, "codec.pkcs7Unpad", nil)
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, airerr.New(airerr.KindMalformedFrame, "codec.pkcs7Unpad", nil)
		}
	}
	return data[:n-padLen], nil
}

// Encrypt AES-128-CBC-encrypts plaintext under the key/IV material
// derived from counterHex and returns the ciphertext as uppercase hex.
func Encrypt(counterHex, plaintext string) (string, error) {
	key, err := keyMaterial(counterHex)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", airerr.New(airerr.KindMalformedFrame, "codec.Encrypt", err)
	}

	padded := pkcs7Pad([]byte(plaintext), blockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, key).CryptBlocks(ciphertext, padded)

	return strings.ToUpper(hex.EncodeToString(ciphertext)), nil
}

// Decrypt is the inverse of Encrypt. It fails with a KindMalformedFrame
// airerr.Error if the hex is invalid, the length is not a multiple of
// the AES block size, the PKCS#7 padding is invalid, or the decrypted
// bytes are not valid UTF-8.
func Decrypt(counterHex, ciphertextHex string) (string, error) {
	key, err := keyMaterial(counterHex)
	if err != nil {
		return "", err
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", airerr.New(airerr.KindMalformedFrame, "codec.Decrypt", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return "", airerr.New(airerr.KindMalformedFrame, "codec.Decrypt", nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", airerr.New(airerr.KindMalformedFrame, "codec.Decrypt", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, key).CryptBlocks(padded, ciphertext)

	plain, err := pkcs7Unpad(padded, blockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", airerr.New(airerr.KindMalformedFrame, "codec.Decrypt", nil)
	}

	return string(plain), nil
}

// Digest computes SHA256(counterHex ‖ ciphertextHex), rendered as 64
// uppercase hex characters. It operates on the hex-encoded strings
// themselves, not the underlying bytes — a protocol quirk preserved
// for wire compatibility.
func Digest(counterHex, ciphertextHex string) string {
	sum := sha256.Sum256([]byte(counterHex + ciphertextHex))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify splits frame into its counter, ciphertext, and digest parts,
// recomputes the digest, and compares it in constant time against the
// one carried on the wire. It returns the counter and ciphertext hex
// substrings on success.
func Verify(frame string) (counterHex, ciphertextHex string, err error) {
	if len(frame) < counterHexLen+digestHexLen {
		return "", "", airerr.New(airerr.KindMalformedFrame, "codec.Verify", nil)
	}

	counterHex = frame[:counterHexLen]
	digestHex := frame[len(frame)-digestHexLen:]
	ciphertextHex = frame[counterHexLen : len(frame)-digestHexLen]

	if len(ciphertextHex) == 0 || len(ciphertextHex)%(blockSize*2) != 0 {
		return "", "", airerr.New(airerr.KindMalformedFrame, "codec.Verify", nil)
	}
	if _, err := hex.DecodeString(counterHex); err != nil {
		return "", "", airerr.New(airerr.KindMalformedFrame, "codec.Verify", err)
	}
	if _, err := hex.DecodeString(ciphertextHex); err != nil {
		return "", "", airerr.New(airerr.KindMalformedFrame, "codec.Verify", err)
	}

	expected := Digest(counterHex, ciphertextHex)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToUpper(digestHex))) != 1 {
		return "", "", airerr.New(airerr.KindDigestMismatch, "codec.Verify", nil)
	}

	return counterHex, ciphertextHex, nil
}

// BuildFrame concatenates counterHex, ciphertextHex and their digest
// into the on-the-wire EncryptedFrame representation.
func BuildFrame(counterHex, ciphertextHex string) string {
	return counterHex + ciphertextHex + Digest(counterHex, ciphertextHex)
}
