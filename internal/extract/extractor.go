// Package extract finds HTTP request and response lines in packet payloads.
package extract

import (
	"regexp"
	"strings"
)

// Request and response markers, tried in this order.
const (
	KeywordPOST = "POST"
	KeywordGET  = "GET"
	KeywordHTTP = "HTTP"
)

// Extractor runs the keyword passes over a payload. The zero value is not usable; call New.
type Extractor struct {
	mode     Mode
	fallback Fallback
	patterns map[string]*regexp.Regexp
}

// New creates an extractor. Empty mode and fallback select ModeBytes and FallbackNone.
func New(mode Mode, fallback Fallback) *Extractor {
	if mode == "" {
		mode = ModeBytes
	}
	if fallback == "" {
		fallback = FallbackNone
	}
	e := &Extractor{
		mode:     mode,
		fallback: fallback,
		patterns: make(map[string]*regexp.Regexp, 3),
	}
	for _, kw := range []string{KeywordPOST, KeywordGET, KeywordHTTP} {
		e.patterns[kw] = compile(mode, kw)
	}
	return e
}

// Mode returns the matching mode.
func (e *Extractor) Mode() Mode { return e.mode }

// Fallback returns the no-match policy.
func (e *Extractor) Fallback() Fallback { return e.fallback }

// compile builds the anchored, lazy pattern `^.*?(keyword).*?<terminator>`.
func compile(mode Mode, keyword string) *regexp.Regexp {
	kw := regexp.QuoteMeta(keyword)
	if mode == ModeEscaped {
		// The escaped form never contains a real line break.
		return regexp.MustCompile(`^.*?(` + kw + `).*?\\r\\n`)
	}
	return regexp.MustCompile(`(?s)^.*?(` + kw + `).*?\r\n`)
}

// Line returns the text from the first occurrence of keyword through the line terminator
// that follows it, or "" when there is none.
func (e *Extractor) Line(keyword string, payload []byte) string {
	re, ok := e.patterns[keyword]
	if !ok {
		re = compile(e.mode, keyword)
	}

	subject := payload
	if e.mode == ModeEscaped {
		subject = []byte(Escape(payload))
	}

	loc := re.FindSubmatchIndex(subject)
	if loc == nil {
		return ""
	}
	// loc[2] is where the keyword group starts, loc[1] is the end of the terminator.
	return strings.ToValidUTF8(string(subject[loc[2]:loc[1]]), "\uFFFD")
}

// Find extracts the HTTP request line (POST, then GET) or, failing that, the response
// status line. Both request passes are concatenated as they are. When nothing matches
// the configured fallback is returned with matched set to false.
func (e *Extractor) Find(payload []byte) (text string, matched bool) {
	request := e.Line(KeywordPOST, payload)
	request += e.Line(KeywordGET, payload)
	if len(request) > 0 {
		return request, true
	}

	if response := e.Line(KeywordHTTP, payload); len(response) > 0 {
		return response, true
	}

	if e.fallback == FallbackRaw {
		return Escape(payload), false
	}
	return "", false
}
