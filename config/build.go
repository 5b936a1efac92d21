// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release of langcat.
const BuildVersion string = "v0.3.0"

// develVersion is what the Go toolchain reports for builds from a checkout.
const develVersion = "(devel)"

// buildInfo is filled from the module and VCS data embedded by the Go
// toolchain.
type buildInfo struct {
	ModuleVersion string
	GoVersion     string
	VcsRevision   string
	VcsTime       string
	VcsModified   bool
}

// Revision formats the VCS state as "2025-01-31-0123abcd", with a "+dirty"
// suffix for modified trees, or "unknown" outside a VCS build.
func (b *buildInfo) Revision() string {
	if len(b.VcsRevision) < 8 {
		return "unknown"
	}

	date, _, _ := strings.Cut(b.VcsTime, "T")

	s := date + "-" + b.VcsRevision[:8]
	if b.VcsModified {
		s += "+dirty"
	}

	return s
}

// Version is the module version for binaries installed with "go install
// module@version", and BuildVersion otherwise.
func (b *buildInfo) Version() string {
	if b.ModuleVersion == "" || b.ModuleVersion == develVersion {
		return BuildVersion
	}

	return b.ModuleVersion
}

func (b *buildInfo) load() {
	if info, ok := debug.ReadBuildInfo(); ok {
		b.fill(info)
	}
}

func (b *buildInfo) fill(info *debug.BuildInfo) {
	b.ModuleVersion = info.Main.Version
	b.GoVersion = info.GoVersion

	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			b.VcsRevision = kv.Value
		case "vcs.time":
			b.VcsTime = kv.Value
		case "vcs.modified":
			b.VcsModified = kv.Value == "true"
		}
	}
}
