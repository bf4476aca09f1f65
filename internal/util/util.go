//go:build !windows

package util

func IsRunFromGUI() bool {
	// On non-Windows, always return false.
	// We only use this to pick a default subcommand when the binary is
	// double-clicked; generator runs on Linux come from a shell or a
	// build system anyway.
	return false
}
