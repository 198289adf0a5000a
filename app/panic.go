package app

import (
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"palvideo/fonts/mono"
	"palvideo/gfx"
	"palvideo/hal"

	"tinygo.org/x/tinyfont"
)

// showPanic logs a recovered panic with its stack and paints it over the
// framebuffer. The video interrupts keep running, so the message stays on
// screen after the foreground loop stops.
func showPanic(log hal.Logger, fb *gfx.FrameBuffer, v any) {
	stack := debug.Stack()
	if log != nil {
		log.WriteLineString(fmt.Sprintf("palvideo panic: %v", v))
		for _, line := range strings.Split(string(stack), "\n") {
			if line != "" {
				log.WriteLineString(line)
			}
		}
	}
	if fb == nil {
		return
	}

	lines := []string{
		"palvideo panic:",
		fmt.Sprint(v),
	}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line != "" {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	font := mono.Face7x13
	d := gfx.NewDisplayer(fb)
	fb.ClearScreen()
	cols := fb.Width() / font.Advance
	if cols <= 0 {
		cols = 1
	}

	y := 0
	for _, line := range lines {
		for len(line) > 0 {
			if y+font.Height > fb.Height() {
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 0, int16(y+font.Ascent), chunk, gfx.Lit)
			y += font.Height
			line = strings.TrimLeft(rest, " ")
		}
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
