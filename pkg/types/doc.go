// Package types defines the small set of interfaces shared across the
// release tooling, most importantly the FS interface that lets commands
// and the tree copier run against temp directories in tests.
package types
