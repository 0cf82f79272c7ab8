// Package buildinfo provides build-time properties injected via ldflags.
//
//	go build -ldflags "-X github.com/nomis52/gocti/buildinfo.gitCommit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

// Properties holds build-time properties injected via ldflags.
type Properties struct {
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Package-level variables for ldflags injection (unexported).
var (
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Get returns the current build properties.
func Get() Properties {
	return Properties{
		BuildTime: buildTime,
		GitCommit: gitCommit,
	}
}

// UserAgent returns the User-Agent sent on outbound CRM requests.
func UserAgent() string {
	return fmt.Sprintf("gocti/%s", gitCommit)
}
