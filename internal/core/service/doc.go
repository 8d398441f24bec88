// Package service provides the application services of hashguard.
//
// Services validate requests, translate store failures into domain errors
// and log through the context logger. They are shared by the HTTP and
// Redis front ends:
//
//   - CacheService: get/set/delete/stats/rehash over the sharded store
//   - RateLimiterRegistry: per-client token buckets
package service
