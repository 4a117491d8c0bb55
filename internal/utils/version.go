package utils

import "runtime/debug"

// BuildVersion is set with -ldflags "-X urzis-pass/internal/utils.BuildVersion=..."
var BuildVersion = ""

func GetVersion() string {
	if BuildVersion != "" {
		return BuildVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}

	// Check if dirty
	for _, setting := range info.Settings {
		if setting.Key == "vcs.modified" && setting.Value == "true" {
			return info.Main.Version + "-dirty"
		}
	}

	return info.Main.Version
}

// UserAgent is sent with every API request unless overridden in config.
func UserAgent() string {
	return "urzis-pass-cli/" + GetVersion()
}
