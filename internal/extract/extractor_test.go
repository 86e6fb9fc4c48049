package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRequestAndResponseLines(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		matched bool
	}{
		{
			name:    "get request",
			payload: "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n",
			want:    "GET /index.html HTTP/1.1\r\n",
			matched: true,
		},
		{
			name:    "post request",
			payload: "POST /login HTTP/1.1\r\nContent-Length: 7\r\n\r\nuser=me",
			want:    "POST /login HTTP/1.1\r\n",
			matched: true,
		},
		{
			name:    "response status line",
			payload: "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n",
			want:    "HTTP/1.1 404 Not Found\r\n",
			matched: true,
		},
		{
			name:    "leading bytes before keyword",
			payload: "\x00\x01\nxxGET / HTTP/1.0\r\n",
			want:    "GET / HTTP/1.0\r\n",
			matched: true,
		},
		{
			name:    "keyword without terminator",
			payload: "GET / HTTP/1.1",
			want:    "",
			matched: false,
		},
		{
			name:    "bare line feed is not a terminator",
			payload: "GET / HTTP/1.1\nHost: a\n",
			want:    "",
			matched: false,
		},
		{
			name:    "neither marker",
			payload: "SSH-2.0-OpenSSH_8.9\r\n",
			want:    "",
			matched: false,
		},
		{
			name:    "empty payload",
			payload: "",
			want:    "",
			matched: false,
		},
		{
			name:    "post and get are concatenated",
			payload: "POST /a HTTP/1.1\r\nX-Note: GET it\r\n\r\n",
			want:    "POST /a HTTP/1.1\r\nGET it\r\n",
			matched: true,
		},
		{
			name:    "request preferred over response marker",
			payload: "GET /x HTTP/1.1\r\n",
			want:    "GET /x HTTP/1.1\r\n",
			matched: true,
		},
	}

	e := New(ModeBytes, FallbackNone)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := e.Find([]byte(tt.payload))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestFindScenario(t *testing.T) {
	e := New(ModeBytes, FallbackNone)

	text, ok := e.Find([]byte("POST /login HTTP/1.1\r\nHost: a\r\n\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "POST /login HTTP/1.1\r\n", text)

	text, ok = e.Find([]byte("HTTP/1.1 404 Not Found\r\nServer: b\r\n\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\n", text)

	text, ok = e.Find([]byte{0x16, 0x03, 0x01, 0x02, 0x00})
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestFindRawFallback(t *testing.T) {
	e := New(ModeBytes, FallbackRaw)

	text, ok := e.Find([]byte("HOGE / \r\n"))
	assert.False(t, ok)
	assert.Equal(t, `b'HOGE / \r\n'`, text)

	// A match never uses the fallback
	text, ok = e.Find([]byte("GET / HTTP/1.0\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "GET / HTTP/1.0\r\n", text)
}

func TestFindEscapedMode(t *testing.T) {
	e := New(ModeEscaped, FallbackNone)
	require.Equal(t, ModeEscaped, e.Mode())

	text, ok := e.Find([]byte("GET / HTTP/1.0\r\nHost: a\r\n\r\n"))
	assert.True(t, ok)
	// The terminator is the escape sequence, not the CR LF bytes
	assert.Equal(t, `GET / HTTP/1.0\r\n`, text)

	text, ok = e.Find([]byte("HTTP/1.1 200 OK\r\n"))
	assert.True(t, ok)
	assert.Equal(t, `HTTP/1.1 200 OK\r\n`, text)

	text, ok = e.Find([]byte("HOGE / \r\n"))
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestLineCustomKeyword(t *testing.T) {
	e := New("", "")
	assert.Equal(t, ModeBytes, e.Mode())
	assert.Equal(t, FallbackNone, e.Fallback())

	assert.Equal(t, "PUT /item HTTP/1.1\r\n", e.Line("PUT", []byte("PUT /item HTTP/1.1\r\n\r\n")))
	assert.Equal(t, "", e.Line("DELETE", []byte("PUT /item HTTP/1.1\r\n")))
}

func TestLineInvalidUTF8(t *testing.T) {
	e := New(ModeBytes, FallbackNone)
	got := e.Line(KeywordGET, []byte("GET /\xff HTTP/1.1\r\n"))
	assert.Equal(t, "GET /\uFFFD HTTP/1.1\r\n", got)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("GET / HTTP/1.1\r\n"), `b'GET / HTTP/1.1\r\n'`},
		{[]byte{}, `b''`},
		{[]byte{0x00, 0x7f, 0xff, '\t'}, `b'\x00\x7f\xff\t'`},
		{[]byte(`a\b`), `b'a\\b'`},
		{[]byte(`it's`), `b"it's"`},
		{[]byte(`it's "q"`), `b'it\'s "q"'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in))
	}
}

func TestParseOptions(t *testing.T) {
	m, err := ParseMode(" Escaped ")
	require.NoError(t, err)
	assert.Equal(t, ModeEscaped, m)

	_, err = ParseMode("regex")
	assert.Error(t, err)

	var f Fallback
	require.NoError(t, f.UnmarshalText([]byte("RAW")))
	assert.Equal(t, FallbackRaw, f)
	assert.Error(t, f.UnmarshalText([]byte("bytes")))

	var mode Mode
	require.NoError(t, mode.UnmarshalText([]byte("bytes")))
	assert.Equal(t, ModeBytes, mode)
}
