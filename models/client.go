package models

import "github.com/google/uuid"

// Client is the normalized view of a Keycloak OAuth client (application)
// returned by client searches.
type Client struct {
	ID                     uuid.UUID `json:"id"`
	ClientID               string    `json:"clientId"`
	Enabled                bool      `json:"enabled"`
	ServiceAccountsEnabled bool      `json:"serviceAccountsEnabled"`
}

// ProtocolMapper describes a protocol mapper to attach to a client, for
// example an oidc-hardcoded-claim-mapper adding a fixed claim to issued
// tokens.
type ProtocolMapper struct {
	Name           string            `json:"name"`
	Protocol       string            `json:"protocol"`
	ProtocolMapper string            `json:"protocolMapper"`
	Config         map[string]string `json:"config"`
}
