package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one screen clear-to-redraw segment of the output.
type Frame struct {
	Index int
	Raw   string
	Text  string
}

var (
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
)

func splitFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range clearScreen.Split(stream, -1) {
		text := trimLines(stripEscapes(segment))
		if text == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), Raw: segment, Text: text})
	}
	return frames
}

// Last returns the final frame, or false when nothing was drawn.
func (r *Recording) Last() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

func stripEscapes(s string) string {
	s = oscSequence.ReplaceAllString(s, "")
	s = csiSequence.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\x0e' || r == '\x0f' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n ")
}
