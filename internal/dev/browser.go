package dev

import (
	"os/exec"
	"runtime"
)

// OpenBrowser opens url in the default browser. It does nothing when no
// opener is available.
func OpenBrowser(url string) error {
	name, args := opener(runtime.GOOS)
	if name == "" || !commandExists(name) {
		return nil
	}
	return exec.Command(name, append(args, url)...).Start()
}

func opener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
