package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
const AuthorizationHeaderName = "Authorization"

// AuthorizationMetadataKey is the gRPC metadata key for the bearer credential.
const AuthorizationMetadataKey = "authorization"
