package models

// Tokens is the access/refresh token pair minted by a token exchange for a
// specific user. It is never cached or persisted by the client.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}
