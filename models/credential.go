package models

import "golang.org/x/crypto/bcrypt"

// bcryptHashIterations is the iteration count reported to Keycloak for
// pre-hashed credentials and used by HashPassword. Keycloak stores it
// alongside the hash so it must match how the hash was produced.
const bcryptHashIterations = 12

type credentialKind int

const (
	credentialNone credentialKind = iota
	credentialRaw
	credentialBcrypt
)

// Credential is a tagged variant for a user's password credential: either
// absent (the zero value), a plain-text password, or a pre-computed bcrypt
// hash. Modelling the choice as a variant removes the "both set" ambiguity
// of two optional fields.
type Credential struct {
	kind  credentialKind
	value string
}

// RawPassword returns a credential carrying a plain-text password. Keycloak
// hashes it server-side on import.
func RawPassword(password string) Credential {
	return Credential{kind: credentialRaw, value: password}
}

// BcryptPassword returns a credential carrying a bcrypt hash produced at
// cost 12, for importing users without knowing their password.
func BcryptPassword(hash string) Credential {
	return Credential{kind: credentialBcrypt, value: hash}
}

// IsZero reports whether no credential was supplied.
func (c Credential) IsZero() bool {
	return c.kind == credentialNone
}

// Representation returns the Keycloak credential representation for this
// variant, or nil when no credential was supplied.
func (c Credential) Representation() []map[string]any {
	switch c.kind {
	case credentialRaw:
		return []map[string]any{{
			"type":      "password",
			"value":     c.value,
			"temporary": false,
		}}
	case credentialBcrypt:
		return []map[string]any{{
			"hashedSaltedValue": c.value,
			"algorithm":         "bcrypt",
			"hashIterations":    bcryptHashIterations,
			"type":              "password",
			"temporary":         false,
		}}
	}
	return nil
}

// HashPassword hashes a plain-text password with bcrypt at the cost the
// credential representation declares, ready for BcryptPassword.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptHashIterations)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
