// Package version holds the build version, set with
// -ldflags "-X tirmite/internal/version.Version=...".
package version

var Version = "dev"
