package extract

import "strings"

const hexDigits = "0123456789abcdef"

// Escape renders payload bytes as a quoted bytes literal: b'GET / HTTP/1.1\r\n'.
//
// Printable ASCII is kept, tab/CR/LF become \t \r \n, the backslash and the quote are
// escaped and every other byte becomes \xNN. Single quotes are used unless the payload
// contains a single quote and no double quote.
func Escape(payload []byte) string {
	quote := byte('\'')
	if strings.IndexByte(string(payload), '\'') >= 0 && strings.IndexByte(string(payload), '"') < 0 {
		quote = '"'
	}

	var b strings.Builder
	b.Grow(len(payload) + 3)
	b.WriteByte('b')
	b.WriteByte(quote)
	for _, c := range payload {
		switch {
		case c == quote || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
