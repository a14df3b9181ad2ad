package common

// RequestIDHeaderName is the gRPC metadata key carrying the caller's request id.
// When absent the server generates one.
const RequestIDHeaderName = "x-request-id"

// BasicTestName is the KYC test whose latest result gates the basic allowance tier.
const BasicTestName = "basic"
