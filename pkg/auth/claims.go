package auth

import (
	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Phone          string
	Role           enums.PrincipalRole
	LoggedInDevice string
}

// AccessTokenClaims represents the typed JWT issued to partners and pickup
// persons. LoggedInDevice is compared against the stored binding on every
// mutating call, so a token survives only as long as its login.
type AccessTokenClaims struct {
	Phone          string              `json:"phone"`
	Role           enums.PrincipalRole `json:"role"`
	LoggedInDevice string              `json:"loggedInDevice"`
	jwt.RegisteredClaims
}
