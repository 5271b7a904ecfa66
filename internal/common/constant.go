// Package common contains shared constants and sentinel errors used across
// the users service components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// ZeroID is the all-zero identifier sentinel. It never names a real principal.
const ZeroID = "00000000-0000-0000-0000-000000000000"
