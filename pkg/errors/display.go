package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	markerColor = color.New(color.FgGreen, color.Bold)
)

// DisplayErrors prints a list of inlay errors to w in a user-friendly
// format, including the source line and position marker. Fatal errors
// render as errors, non-fatal diagnostics as warnings.
func DisplayErrors(w io.Writer, errs []InlayError) {
	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		paint := errorColor
		label := kind + " Error"
		if !err.Fatal() {
			paint = warnColor
			label = kind + " Warning"
		}

		// Print error location and message
		// Format: <Kind> Error [in <file>] at <Line>:<Column>: <Message>
		if pos.Source != nil {
			paint.Fprintf(w, "%s", label)
			fmt.Fprintf(w, " in %s at %d:%d: %s\n", pos.Source.DisplayPath(), pos.Line, pos.Column, msg)
		} else {
			paint.Fprintf(w, "%s", label)
			fmt.Fprintf(w, " at %d:%d: %s\n", pos.Line, pos.Column, msg)
		}

		sourceLine := ""
		if pos.Source != nil {
			sourceLine = pos.Source.Line(pos.Line)
		}
		if sourceLine == "" {
			fmt.Fprintln(w)
			continue
		}
		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ")

		// Print the source line
		fmt.Fprintf(w, "  %s\n", trimmedLine)

		// Print the marker line. The indent is the display width of the
		// text before the column, so the caret stays aligned when the
		// line contains wide runes or tabs.
		fmt.Fprintf(w, "  %s", strings.Repeat(" ", markerIndent(trimmedLine, pos.Column)))
		markerColor.Fprintf(w, "%s\n", marker(trimmedLine, pos))
		fmt.Fprintln(w) // Add a blank line between errors
	}
}

// markerIndent returns the display width of the line prefix before the
// 1-based column.
func markerIndent(line string, column int) int {
	if column < 1 {
		return 0
	}
	runes := []rune(line)
	if column-1 < len(runes) {
		runes = runes[:column-1]
	}
	width := 0
	for _, r := range runes {
		if r == '\t' {
			width += 4
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// marker builds the "^~~~" underline spanning the error's token.
func marker(line string, pos Position) string {
	span := 1
	if pos.EndPos > pos.StartPos {
		runes := []rune(line)
		start := pos.Column - 1
		if start < 0 {
			start = 0
		}
		end := start + pos.EndPos - pos.StartPos
		if end > len(runes) {
			end = len(runes)
		}
		if end > start {
			span = runewidth.StringWidth(string(runes[start:end]))
		}
	}
	if span < 1 {
		span = 1
	}
	return "^" + strings.Repeat("~", span-1)
}
