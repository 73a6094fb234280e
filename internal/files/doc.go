// Package files holds the adapters for the project's environment file and
// build descriptor.
//
// EnvFile keeps .env byte-for-byte: comments, blank lines and duplicate
// keys survive every write, and new keys only ever land at the end.
// ProjectFile is read-only.
package files
