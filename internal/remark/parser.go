package remark

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// HeaderMarker opens every section header line.
	HeaderMarker = "###"
	// HeaderPhrase precedes the band label in a header: "### MỨC ĐIỂM 9-10".
	HeaderPhrase = "MỨC ĐIỂM"

	bulletChars = "-*•"
)

type lineKind int

const (
	lineOther lineKind = iota
	lineHeader
	lineBullet
)

// scanState is the parser's only state: the band key bullets attach to.
type scanState struct {
	key    string
	active bool
}

// Parse splits a generated text block into per-band remark queues.
//
// Header lines start with "###" and name a band; bullet lines start with
// "-", "*" or "•" and carry one remark for the most recent header. Bullets
// before the first header and every other line are ignored. Parse never
// fails: text without headers produces empty Pools.
func Parse(text string) *Pools {
	pools := NewPools()
	var st scanState

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch classifyLine(line) {
		case lineHeader:
			st = scanState{key: headerKey(line), active: true}
			pools.reset(st.key)
		case lineBullet:
			if !st.active {
				continue
			}
			pools.push(st.key, Clean(line))
		}
	}
	return pools
}

func classifyLine(line string) lineKind {
	if strings.HasPrefix(line, HeaderMarker) {
		return lineHeader
	}
	r, _ := utf8.DecodeRuneInString(line)
	if strings.ContainsRune(bulletChars, r) {
		return lineBullet
	}
	return lineOther
}

// headerKey strips the marker and the fixed phrase from a header line. A
// header with nothing left yields the empty key.
func headerKey(line string) string {
	line = norm.NFC.String(line)
	line = strings.ReplaceAll(line, HeaderMarker, "")
	line = strings.ReplaceAll(line, norm.NFC.String(HeaderPhrase), "")
	return strings.TrimSpace(line)
}

// Clean trims whitespace and leading bullet characters from a remark and
// upper-cases its first letter.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, bulletChars+" \t")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}
