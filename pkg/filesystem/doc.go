// Package filesystem provides the production implementation of types.FS
// backed by the OS filesystem.
package filesystem
