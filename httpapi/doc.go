// Package httpapi exposes the authentication engine over HTTP for browser
// clients. Tokens travel exclusively in the access_token / refresh_token
// cookies; no handler ever serializes a token into a response body.
package httpapi
