package domain

// TokenType differentiates short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair is the credential set handed out on login and registration.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
