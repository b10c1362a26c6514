package driver

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// FindChrome locates a Chrome/Chromium executable. An explicit path (from
// config or TABLECRAWL_CHROME_PATH) wins; then well-known install locations;
// then PATH. An empty result lets chromedp fall back to its own lookup.
func FindChrome(explicit string) string {
	for _, p := range []string{explicit, os.Getenv("TABLECRAWL_CHROME_PATH"), os.Getenv("CHROME_PATH")} {
		if p == "" {
			continue
		}
		if isExecutable(p) {
			log.Debug().Str("path", p).Msg("Chrome found via explicit path")
			return p
		}
		log.Warn().Str("path", p).Msg("Configured Chrome path is not executable")
	}

	for _, p := range knownLocations() {
		if isExecutable(p) {
			log.Debug().Str("path", p).Str("os", runtime.GOOS).Msg("Chrome found at standard location")
			return p
		}
	}

	for _, name := range []string{
		"google-chrome-stable", "google-chrome", "chromium", "chromium-browser",
		"chrome", "msedge", "brave", "brave-browser",
	} {
		if p, err := exec.LookPath(name); err == nil {
			log.Debug().Str("path", p).Msg("Chrome found in PATH")
			return p
		}
	}

	log.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, will use chromedp default (may fail)")
	return ""
}

func knownLocations() []string {
	home := os.Getenv("HOME")

	switch runtime.GOOS {
	case "darwin":
		paths := []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome"))
		}
		return paths

	case "windows":
		var paths []string
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base == "" {
				continue
			}
			paths = append(paths,
				filepath.Join(base, "Google\\Chrome\\Application\\chrome.exe"),
				filepath.Join(base, "Chromium\\Application\\chrome.exe"),
				filepath.Join(base, "Microsoft\\Edge\\Application\\msedge.exe"),
			)
		}
		return paths

	default:
		paths := []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
			"/usr/bin/microsoft-edge",
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"))
		}
		return paths
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
