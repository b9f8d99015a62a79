// Package client is the authctl side of the authkeeper gRPC API.
//
// GRPCClient dials the server with the JSON codec, attaches the bearer token
// to calls that need one and maps status errors to *APIError values. The
// sentinels ErrUnavailable and ErrUnauthorized can be matched with errors.Is.
package client
