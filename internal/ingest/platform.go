package ingest

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// validatePlatform checks that the host can plausibly own a live
// message store: macOS 10.14 or newer. Older releases predate the
// current store schema.
func validatePlatform() error {
	if runtime.GOOS != "darwin" {
		return &PrecondError{
			Reason: fmt.Sprintf("unsupported platform %s", runtime.GOOS),
			Remedy: "this tool reads the macOS Messages store; use --db with a copied store elsewhere",
		}
	}
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		// Version probe failure is not worth blocking the load over.
		return nil
	}
	return checkMacOSVersion(strings.TrimSpace(string(out)))
}

// checkMacOSVersion rejects versions older than 10.14.
func checkMacOSVersion(version string) error {
	if version == "" {
		return nil
	}
	parts := strings.Split(version, ".")
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	minor := 0
	if len(parts) > 1 {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			minor = v
		}
	}
	if major < 10 || (major == 10 && minor < 14) {
		return &PrecondError{
			Reason: fmt.Sprintf("macOS 10.14+ required (found %s)", version),
		}
	}
	return nil
}
