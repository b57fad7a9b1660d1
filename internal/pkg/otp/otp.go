// Package otp generates the one-time numeric codes sent by email.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the number of digits in a generated code.
	CodeLength = 6

	codeMin = 100000
	codeMax = 999999
)

// GenerateCode returns a uniform random 6-digit numeric code in
// [100000, 999999], generated with crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}
