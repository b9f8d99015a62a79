// Package common contains shared constants and sentinel errors used across
// authkeeper components.
package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer token. gRPC metadata keys are lower-case.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the authorization scheme accepted by the gate.
const BearerScheme = "Bearer"
