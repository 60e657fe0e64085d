//go:build !windows

package output

// enableANSI returns true on Unix-like systems; terminals there accept ANSI colors
func enableANSI() bool {
	return true
}
