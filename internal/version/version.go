// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set via -ldflags "-X github.com/olegiv/folio-go/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = ""
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit"`
	BuildTime string `json:"buildTime,omitempty"`
}

// Current returns the version information linked into the binary.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

func (i Info) String() string {
	if i.BuildTime == "" {
		return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s (%s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
