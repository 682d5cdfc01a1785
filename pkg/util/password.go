package util

import "golang.org/x/crypto/bcrypt"

// Work factor for new hashes. Existing hashes keep verifying at the cost
// they were created with.
const bcryptCost = 12

// HashPassword derives a bcrypt hash from a plain text password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
