package domain

// TokenFormat selects how bearer tokens are minted.
type TokenFormat string

const (
	TokenFormatOpaque TokenFormat = "opaque"
	TokenFormatJWT    TokenFormat = "jwt"
)
