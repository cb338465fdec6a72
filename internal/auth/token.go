package auth

import (
	"crypto/rand"
	"math/big"
)

const (
	tokenLength  = 16
	tokenCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var charsetSize = big.NewInt(int64(len(tokenCharset)))

// NewToken returns a 16 character alphanumeric string drawn from crypto/rand.
func NewToken() (string, error) {
	b := make([]byte, tokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		b[i] = tokenCharset[n.Int64()]
	}
	return string(b), nil
}
