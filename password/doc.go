// Package password provides the one-way credential hashing capability used
// by the engine. The engine depends only on the Hasher interface; bcrypt is
// the shipped implementation.
package password
