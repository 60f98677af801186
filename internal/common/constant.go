package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// ClientInstanceHeaderName carries a per-process instance id so the backend
// can correlate fire-and-forget access log events with a client session.
const ClientInstanceHeaderName = "X-Client-Instance"
