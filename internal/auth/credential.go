package auth

import "golang.org/x/crypto/bcrypt"

// HashCredential hashes a plaintext service credential for storage in env.
func HashCredential(credential string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareCredential verifies a credential against its hashed value.
func CompareCredential(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
