package e2e

// EdgeCaseFiles returns .htm contents that exercise decoding and line counting.
// Each one contains the fragment "needle" exactly once, on the line given by EdgeCaseLines.
func EdgeCaseFiles() map[string][]byte {
	return map[string][]byte{
		"bom.htm":        append([]byte{0xEF, 0xBB, 0xBF}, []byte("<p>NEEDLE</p>\n")...),
		"crlf.htm":       []byte("<p>one</p>\r\n<p>two</p>\r\n<p>needle</p>\r\n"),
		"no-newline.htm": []byte("needle"),
		"unicode.htm":    []byte("<p>ÄÖÜ ✓</p>\n<p>日本語</p>\n<p>Needle</p>\n"),
		"blank.htm":      []byte("\n\n\n\nneedle\n"),
	}
}

// EdgeCaseLines is the expected line of "needle" in each EdgeCaseFiles entry.
var EdgeCaseLines = map[string]int{
	"bom.htm":        1,
	"crlf.htm":       3,
	"no-newline.htm": 1,
	"unicode.htm":    3,
	"blank.htm":      5,
}

// InvalidUTF8 is content no strict reader accepts.
var InvalidUTF8 = []byte("<p>needle \xff\xfe</p>\n")
