// Package redisserver serves the key/value store over the Redis RESP2
// protocol so standard Redis clients can use it.
//
// Supported commands:
//   - PING, ECHO, QUIT
//   - GET, SET, DEL, EXISTS, DBSIZE
//   - INFO (server, keyspace and hashguard sections)
//
// Errors raised by the store carry their domain code, e.g.
// "ERR HG-ARG-4002 key too long".
package redisserver
