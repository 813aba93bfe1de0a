package scenefile

import (
	"path/filepath"
	"strings"

	"github.com/gfox0104/AetPlugin/internal/util"
)

// Verdict is the outcome of an importability check.
type Verdict int

const (
	Valid Verdict = iota
	InvalidFileName
	InvalidExtension
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case InvalidFileName:
		return "invalid file name"
	case InvalidExtension:
		return "invalid extension"
	default:
		return "unknown"
	}
}

// Extensions lists the accepted scene file extensions.
var Extensions = []string{".yaml", ".yml", ".json"}

// Verify tells whether path names an importable scene file: its base name
// starts with "aet_" and it carries a known extension. The file is not opened.
func Verify(path string) Verdict {
	base := filepath.Base(path)
	if !util.HasPrefixFold(base, util.SetNamePrefix) {
		return InvalidFileName
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions {
		if ext == e {
			return Valid
		}
	}
	return InvalidExtension
}
