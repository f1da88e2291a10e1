package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"io"

	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// plainTokenSize is the number of random bytes in a generated token.
const plainTokenSize = 32

// ErrMalformedSalt indicates a stored salt that is not valid hex.
var ErrMalformedSalt = apperrors.New("malformed token salt")

// tokenService implements TokenService using salted SHA-256.
type tokenService struct {
	random io.Reader
}

// NewTokenService creates a TokenService drawing randomness from crypto/rand.
func NewTokenService() TokenService {
	return &tokenService{random: rand.Reader}
}

// GenerateToken creates a 32-byte random token, base64 URL-encoded, and hashes it with a
// fresh salt.
func (t *tokenService) GenerateToken() (string, string, string, error) {
	randomBytes := make([]byte, plainTokenSize)
	if _, err := io.ReadFull(t.random, randomBytes); err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.URLEncoding.EncodeToString(randomBytes)

	tokenHash, saltHex, err := t.HashToken(plainToken, nil)
	if err != nil {
		return "", "", "", err
	}

	return plainToken, tokenHash, saltHex, nil
}

// HashToken hashes plainToken with salt, generating a salt when none is given.
func (t *tokenService) HashToken(plainToken string, salt []byte) (string, string, error) {
	if len(salt) == 0 {
		salt = make([]byte, authDomain.SaltSize)
		if _, err := io.ReadFull(t.random, salt); err != nil {
			return "", "", apperrors.Wrap(err, "failed to generate token salt")
		}
	}

	return digest(plainToken, salt), hex.EncodeToString(salt), nil
}

// CompareToken reports whether plainToken hashes to tokenHash under the stored salt.
func (t *tokenService) CompareToken(plainToken, tokenHash, saltHex string) (bool, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false, ErrMalformedSalt
	}

	computed := digest(plainToken, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(tokenHash)) == 1, nil
}

func digest(plainToken string, salt []byte) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(plainToken))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
