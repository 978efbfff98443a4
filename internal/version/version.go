// Package version reports build information. The variables are set at link
// time:
//
//	go build -ldflags "-X github.com/roach88/svconform/internal/version.Version=1.2.0 \
//	  -X github.com/roach88/svconform/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Name      = "svconform"
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Info collects the build information.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (built %s, %s %s)", i.Name, i.Version, i.BuildTime, i.GoVersion, i.Platform)
}
