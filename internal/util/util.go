// Package util provides common name helpers used across the importer.
package util

import "strings"

// SetNamePrefix is the name prefix every Aet set carries.
const SetNamePrefix = "aet_"

// HasPrefixFold reports whether s begins with prefix, ignoring ASCII case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// TrimSetPrefix removes a leading "aet_" (any case) from a set name.
func TrimSetPrefix(name string) string {
	if HasPrefixFold(name, SetNamePrefix) {
		return name[len(SetNamePrefix):]
	}
	return name
}

// FormatSceneName builds the root composition name of a scene:
// the lowercased set name without its "aet_" prefix, an underscore, then the
// lowercased scene name.
// Input: set "AET_GAM_CMN", scene "MAIN" -> "gam_cmn_main"
func FormatSceneName(setName, sceneName string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(TrimSetPrefix(setName)))
	b.WriteByte('_')
	b.WriteString(strings.ToLower(sceneName))
	return b.String()
}

// SanitizeFileName replaces characters that are unsafe in file names with underscores.
func SanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "project"
	}
	return fileNameReplacer.Replace(s)
}

var fileNameReplacer = strings.NewReplacer(
	" ", "_",
	":", "_",
	"/", "_",
	`\`, "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)
