// ABOUTME: Build version information
// ABOUTME: Overridable at link time with -ldflags "-X"
package version

var (
	// Version is the release version
	Version = "0.1.0"

	// Product is the application name
	Product = "MicAmp"

	// Manufacturer is reported to remote monitors
	Manufacturer = "MicAmp"
)

// String returns "Product Version"
func String() string {
	return Product + " " + Version
}
