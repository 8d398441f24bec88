// Package tlsroots provides TLS material for the HTTP listener.
//
// CertReloader serves the listener certificate and reloads it when the
// certificate or key file changes, so rotated certificates take effect
// without a restart. LoadPool reads CA bundles used to verify client
// certificates.
package tlsroots
