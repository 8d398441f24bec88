// Package handler provides the HTTP request handlers of hashguard-server.
//
// All JSON responses share the Response envelope. Errors carry the
// DomainError code both in the body and in the X-Error-Code header.
package handler
