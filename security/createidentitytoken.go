package security

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognised by the sync endpoints.
const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

type ReporterIdentity struct {
	Id       int
	UserName string
	Role     string
	Hospital string
}

type Identity struct {
	ID         int    `json:"nameid"`
	UniqueName string `json:"unique_name"`
	Role       string `json:"role"`
	Hospital   string `json:"hospital"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// CreateIdentityToken signs an HS256 token for a reporting user or device.
// base64Secret is the base64-encoded HMAC key shared with the server.
func CreateIdentityToken(identity *ReporterIdentity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		Identity: Identity{
			ID:         identity.Id,
			UniqueName: identity.UserName,
			Role:       identity.Role,
			Hospital:   identity.Hospital,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vbdreport",
			Audience:  []string{"vbdreport.org"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretBytes)
}
