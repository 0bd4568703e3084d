package session

import (
	"fmt"
	"regexp"
)

// Platform values sent in sec-ch-ua-platform
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformUnknown = "Unknown"
)

var platformPatterns = []struct {
	pattern  *regexp.Regexp
	platform string
}{
	{regexp.MustCompile(`(?i)iPhone`), PlatformIOS},
	{regexp.MustCompile(`(?i)Android`), PlatformAndroid},
	{regexp.MustCompile(`(?i)iPad`), PlatformIOS},
}

// DetectPlatform maps a user agent onto the platform the webview reports
func DetectPlatform(userAgent string) string {
	for _, p := range platformPatterns {
		if p.pattern.MatchString(userAgent) {
			return p.platform
		}
	}
	return PlatformUnknown
}

// SecCHUA builds the sec-ch-ua header for a platform
func SecCHUA(platform string) string {
	return fmt.Sprintf(`"Not)A;Brand";v="99", "%s WebView";v="127", "Chromium";v="127"`, platform)
}
