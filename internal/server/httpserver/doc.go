// Package httpserver provides the HTTP server of hashguard-server.
//
// Routes are registered on a net/http ServeMux; each route group gets its
// own middleware chain:
//
//	public:  Recover -> RequestID -> Metrics -> Audit -> RateLimit -> handler
//	admin:   Recover -> RequestID -> Metrics -> Audit -> NetworkACL -> handler
//	probes:  Recover -> RequestID -> handler
package httpserver
