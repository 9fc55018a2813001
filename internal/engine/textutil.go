package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// previewLimit caps free text attached to log lines.
const previewLimit = 80

// Preview collapses whitespace in s and cuts it at a word boundary, for
// logging user text without flooding the log.
func Preview(s string) string {
	return strutil.TruncateAtWord(strings.Join(strings.Fields(s), " "), previewLimit)
}
