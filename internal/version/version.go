// ABOUTME: Version information for boombox
// ABOUTME: Shown by the CLI and logged at startup
package version

const (
	// Version is the current release
	Version = "0.1.0"

	// Product is the name shown in usage and logs
	Product = "boombox"

	// Manufacturer identifies who builds it
	Manufacturer = "Resonate Protocol"
)

// String describes the build for --version and the startup log
func String() string {
	return Product + " " + Version + " (" + Manufacturer + ")"
}
