package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultCategoryName is shown for ledger records whose category cannot be resolved.
const DefaultCategoryName = "Unknown"
