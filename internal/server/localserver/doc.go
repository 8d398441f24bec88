// Package localserver serves the HTTP API on a Unix domain socket.
//
// The socket is created with owner-only permissions, so any local process
// able to connect already runs as the server's user. Admin endpoints are
// therefore reachable without the network allowlist:
//
//	hashguard-cli --server unix:///run/hashguard/admin.sock rehash
package localserver
