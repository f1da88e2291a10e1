// Package service provides the token hashing primitives used by authentication.
package service

// TokenService defines operations for authentication token generation and hashing.
type TokenService interface {
	// GenerateToken creates a new random token and its salted hash.
	// The plain token is returned once and never stored.
	GenerateToken() (plainToken string, tokenHash string, saltHex string, err error)

	// HashToken computes base64(SHA-256(salt || plainToken)). A nil or empty salt is
	// replaced by a fresh random one. saltHex is the hex encoding of the salt used.
	HashToken(plainToken string, salt []byte) (tokenHash string, saltHex string, err error)

	// CompareToken recomputes the hash of plainToken with the stored salt and compares it
	// to tokenHash in constant time. A salt that is not valid hex is an error.
	CompareToken(plainToken, tokenHash, saltHex string) (bool, error)
}
