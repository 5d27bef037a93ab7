package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeUTF8 returns content as string. Invalid sequences are an error unless
// lenient, in which case they are replaced with the replacement character.
func decodeUTF8(content []byte, lenient bool) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	if !lenient {
		return "", ErrInvalidUTF8
	}
	return strings.ToValidUTF8(string(content), "\uFFFD"), nil
}
