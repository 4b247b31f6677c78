package synclog

import "regexp"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)[^\s"']+`),
	regexp.MustCompile(`(?i)((?:token|api[_-]?key|password)\s*[=:]\s*)[^\s&"']+`),
}

// SanitizeDetail redacts credentials that remote error messages sometimes
// echo back before they are written to the log.
func SanitizeDetail(s string) string {
	for _, re := range secretPatterns {
		s = re.ReplaceAllString(s, "${1}<redacted>")
	}
	return s
}
