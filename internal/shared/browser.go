package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

const imdbTitleURL = "https://www.imdb.com/title/"

var getRuntime = func() string { return runtime.GOOS }

// IMDbURL returns the public IMDb page for an external movie id.
func IMDbURL(id string) string {
	return imdbTitleURL + url.PathEscape(id) + "/"
}

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(target string) error {
	cmd, err := browserCommand(getRuntime(), target)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

func browserCommand(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", target), nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrNotImplemented, goos)
	}
}
