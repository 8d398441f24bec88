// Package connection provides the HTTP client used by hashguard-cli.
//
// The client speaks the server's JSON API and unwraps the response
// envelope, turning error envelopes into *APIError values that keep the
// server's error code.
package connection
