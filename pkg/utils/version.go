// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Build metadata, overridden at link time with -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies devassist to the backend.
func UserAgent() string {
	return "devassist/" + Version
}
