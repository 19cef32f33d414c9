// Copyright (c) 2026 InternPulse. All rights reserved.

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// NewOTPSecret generates a fresh base32-encoded secret for time-based
// one-time passwords. The 20-byte size matches the SHA-1 block the HMAC
// consumes.
func NewOTPSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate otp secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// CurrentOTP computes the TOTP code for the given secret at the given time
// (RFC 6238 with HMAC-SHA1).
func CurrentOTP(secret string, digits int, period time.Duration, at time.Time) (string, error) {
	counter := uint64(at.Unix()) / uint64(period.Seconds())
	return hotp(secret, counter, digits)
}

// VerifyOTP checks a candidate code against the secret for the time step
// containing "at". No clock-skew window is allowed: a code is valid only
// within its own period.
func VerifyOTP(secret, candidate string, digits int, period time.Duration, at time.Time) bool {
	if len(candidate) != digits {
		return false
	}
	if _, err := strconv.Atoi(candidate); err != nil {
		return false
	}

	expected, err := CurrentOTP(secret, digits, period, at)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

// hotp implements the RFC 4226 HMAC-based one-time password over a counter.
func hotp(secret string, counter uint64, digits int) (string, error) {
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: malformed otp secret: %w", err)
	}

	var message [8]byte
	binary.BigEndian.PutUint64(message[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(message[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 section 5.3.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, code%mod), nil
}
