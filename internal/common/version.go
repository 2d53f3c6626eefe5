package common

// Build metadata, injected at link time via -ldflags.
var (
	version   = "0.3.0"
	build     = "dev"
	gitCommit = "unknown"
)

// GetVersion returns the semantic version.
func GetVersion() string { return version }

// GetBuild returns the build identifier.
func GetBuild() string { return build }

// GetGitCommit returns the git commit hash.
func GetGitCommit() string { return gitCommit }
