// Package api is the public API facade of veeox.
//
// It is a leaf package: the web package re-exports Api, so nothing here may
// import web.
package api

// Name is the identifying name reported by Api.
const Name = "veeox-api::Api"

// Build metadata, overridden with -ldflags "-X github.com/veeox/veeox/api.Version=..."
var (
	Version = "dev"
	Commit  = "none"
)

// Api is the public API facade type
type Api struct{}

// Name returns the fixed identifying name of the type
func (Api) Name() string {
	return Name
}

// BuildInfo describes the running build
type BuildInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// Info returns the build information of the facade
func Info() BuildInfo {
	return BuildInfo{
		Name:    Name,
		Version: Version,
		Commit:  Commit,
	}
}

// String formats the build information for humans
func (b BuildInfo) String() string {
	return b.Name + " " + b.Version + " (commit=" + b.Commit + ")"
}
