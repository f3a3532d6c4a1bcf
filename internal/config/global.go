// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces ConfigDir for the whole process. Tests use it
// so they never read or write the real user configuration.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir. Pair it with Reset in
// t.Cleanup.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset drops any config directory override.
func Reset() {
	configDirOverride = ""
}
