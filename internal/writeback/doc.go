// Package writeback holds the plumbing shared by the project file adapters:
// the error taxonomy, format validation, and the atomic replace used when a
// transactional scope commits.
package writeback
