package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as UTF-8, replacing invalid sequences and
// dropping a leading byte order mark.
func extractPlain(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
