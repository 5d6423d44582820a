// Package stores holds the Redis-backed state the engine owns. Nothing in
// here is part of the public API; the root package re-exposes behavior, not
// storage.
package stores
