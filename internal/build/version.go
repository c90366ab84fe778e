package build

// Set at link time with -ldflags "-X github.com/rohmanhakim/cobweb/internal/build.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent is the default User-Agent header sent by the fetcher.
func UserAgent() string {
	return "cobweb/" + Version
}
