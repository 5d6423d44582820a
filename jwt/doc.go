// Package jwt is the stateless token codec: it signs and verifies the
// compact HS256 tokens carried by the engine, and nothing else. Custody of
// refresh tokens lives with the engine's Redis slot, not here.
package jwt
