// Package version holds the build version string.
package version

// Version is the application version. Release builds override it via
// -ldflags "-X postergo/pkg/version.Version=v1.2.3".
var Version = "dev"
