// Package utils holds small helpers shared by the command and its
// internal packages.
package utils

import (
	"os"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading ~ and any environment variables in path.
// Paths that cannot be expanded are returned unchanged.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	path = os.ExpandEnv(path)
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}
