package officetext

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Destination groups whose content is never document text.
var rtfSkipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "header": true, "headerl": true, "headerr": true, "headerf": true,
	"footer": true, "footerl": true, "footerr": true, "footerf": true,
	"listtable": true, "listoverridetable": true, "rsidtbl": true, "generator": true,
	"xmlnstbl": true, "themedata": true, "colorschememapping": true,
	"latentstyles": true, "datastore": true, "object": true, "fldinst": true,
}

var rtfSymbols = map[string]string{
	"par": "\n", "line": "\n", "sect": "\n", "page": "\n", "row": "\n",
	"tab": "\t", "cell": "\t",
	"emdash": "—", "endash": "–", "bullet": "•",
	"lquote": "‘", "rquote": "’", "ldblquote": "“", "rdblquote": "”",
}

type rtfGroup struct {
	skip bool
	uc   int
}

type rtfState struct {
	out     strings.Builder
	stack   []rtfGroup
	pending int
}

func (s *rtfState) top() *rtfGroup {
	return &s.stack[len(s.stack)-1]
}

// char emits one text character unless it is a \u fallback or inside a skipped group.
func (s *rtfState) char(r rune) {
	if s.pending > 0 {
		s.pending--
		return
	}
	if s.top().skip {
		return
	}
	s.out.WriteRune(r)
}

func (s *rtfState) text(str string) {
	if s.top().skip {
		return
	}
	s.out.WriteString(str)
}

// StripRTF returns the visible text of an RTF document. Bytes above 0x7f and
// \'hh escapes are decoded as Windows-1252.
func StripRTF(raw []byte) string {
	s := &rtfState{stack: []rtfGroup{{uc: 1}}}
	for i := 0; i < len(raw); {
		c := raw[i]
		switch c {
		case '{':
			s.stack = append(s.stack, *s.top())
			i++
		case '}':
			if len(s.stack) > 1 {
				s.stack = s.stack[:len(s.stack)-1]
			}
			i++
		case '\r', '\n':
			i++
		case '\\':
			i = s.control(raw, i+1)
		default:
			s.char(charmap.Windows1252.DecodeByte(c))
			i++
		}
	}
	return s.out.String()
}

// control handles the token after a backslash and returns the next offset.
func (s *rtfState) control(raw []byte, i int) int {
	if i >= len(raw) {
		return i
	}
	c := raw[i]
	switch {
	case c == '\\' || c == '{' || c == '}':
		s.char(rune(c))
		return i + 1
	case c == '\'':
		if i+2 < len(raw) {
			if b, err := strconv.ParseUint(string(raw[i+1:i+3]), 16, 8); err == nil {
				s.char(charmap.Windows1252.DecodeByte(byte(b)))
			}
		}
		return i + 3
	case c == '*':
		s.top().skip = true
		return i + 1
	case c == '~':
		s.char(' ')
		return i + 1
	case c == '_':
		s.char('-')
		return i + 1
	case c == '\n' || c == '\r':
		s.text("\n")
		return i + 1
	case isASCIILetter(c):
	default:
		return i + 1
	}

	start := i
	for i < len(raw) && isASCIILetter(raw[i]) {
		i++
	}
	word := string(raw[start:i])
	paramStart := i
	if i < len(raw) && raw[i] == '-' {
		i++
	}
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	param, hasParam := 0, false
	if i > paramStart {
		if n, err := strconv.Atoi(string(raw[paramStart:i])); err == nil {
			param, hasParam = n, true
		}
	}
	if i < len(raw) && raw[i] == ' ' {
		i++
	}

	switch {
	case rtfSkipped[word]:
		s.top().skip = true
	case word == "uc" && hasParam:
		s.top().uc = param
	case word == "u" && hasParam:
		if param < 0 {
			param += 65536
		}
		s.char(rune(param))
		s.pending = s.top().uc
	default:
		if sym, ok := rtfSymbols[word]; ok {
			s.text(sym)
		}
	}
	return i
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
