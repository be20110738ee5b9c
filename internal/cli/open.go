package cli

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// openerCommand names the program that shows target in the user's browser.
func openerCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// openPath shows the settings page (or any URL) in the default browser.
func openPath(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.New("open: empty url")
	}
	name, args := openerCommand(runtime.GOOS, target)
	if err := exec.Command(name, args...).Run(); err != nil {
		return fmt.Errorf("open %s with %s: %w", target, name, err)
	}
	return nil
}
