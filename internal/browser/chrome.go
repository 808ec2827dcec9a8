package browser

import (
	"os"
)

var commonChromePaths = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/opt/google/chrome/chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"C:\\Program Files\\Google\\Chrome\\Application\\chrome.exe",
	"C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe",
}

// SystemChromePath finds an installed Chrome/Chromium. An explicit path wins,
// then CHROME_BIN and CHROME_PATH, then well-known install locations.
// An empty result lets rod download its own build.
func SystemChromePath(explicit string) string {
	candidates := []string{explicit, os.Getenv("CHROME_BIN"), os.Getenv("CHROME_PATH")}
	candidates = append(candidates, commonChromePaths...)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}
