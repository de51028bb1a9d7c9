package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-text/typesetting/segmenter"
)

// scanDirection is the order in which words are packed into a line.
// Bottom captions fill the lowest line from the end of the text.
type scanDirection int

const (
	forward scanDirection = iota
	backward
)

func directionFor(anchor Anchor) scanDirection {
	if anchor == Bottom {
		return backward
	}
	return forward
}

// Wrap breaks text into lines that fit inside area and returns them in
// top-to-bottom reading order, together with one position per line.
//
// Every step peels one line off the remaining text, nearest to the anchor
// first. The step after it is placed measure(remaining).Height further from
// the anchored edge. A single word wider than the area is split between
// grapheme clusters.
func Wrap(area Area, measure MeasureFunc, text string, anchor Anchor, align Align, offset int) ([]string, []Point, error) {
	if area.Width <= 0 || area.Height <= 0 {
		return nil, nil, fmt.Errorf("%w: area %dx%d", ErrInvalidArgument, area.Width, area.Height)
	}
	if text == "" {
		return nil, nil, nil
	}
	w := &wrapper{
		measure: measure,
		dir:     directionFor(anchor),
		limit:   area.Width - wrapMargin,
	}

	var (
		lines []string
		pos   []Point
	)
	for text != "" {
		if len(lines) == MaxLines {
			return nil, nil, fmt.Errorf("%w: more than %d lines", ErrTooManyLines, MaxLines)
		}
		line, rest, size, whole, err := w.step(text)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
		pos = append(pos, Position(area, size, anchor, align, offset))
		offset += whole.Height
		text = rest
	}

	// Lines were collected nearest-to-anchor first.
	if w.dir == backward {
		slices.Reverse(lines)
		slices.Reverse(pos)
	}
	return lines, pos, nil
}

type wrapper struct {
	measure MeasureFunc
	dir     scanDirection
	limit   int
}

// size measures s and rejects non-positive results for non-empty text.
func (w *wrapper) size(s string) (Size, error) {
	sz := w.measure(s)
	if s != "" && (sz.Width <= 0 || sz.Height <= 0) {
		return Size{}, fmt.Errorf("%w: measured %q as %dx%d", ErrInvalidArgument, s, sz.Width, sz.Height)
	}
	return sz, nil
}

func (w *wrapper) fits(s string) (bool, error) {
	sz, err := w.size(s)
	if err != nil {
		return false, err
	}
	return sz.Width <= w.limit, nil
}

// step returns the line nearest to the anchor, the text left over for the
// following steps, the measured size of the line and that of the whole text.
func (w *wrapper) step(text string) (line, rest string, size, whole Size, err error) {
	whole, err = w.size(text)
	if err != nil {
		return "", "", Size{}, Size{}, err
	}
	if whole.Width <= w.limit {
		return text, "", whole, whole, nil
	}

	words := strings.Split(text, " ")
	n, err := w.packWords(words)
	if err != nil {
		return "", "", Size{}, Size{}, err
	}
	var restWords []string
	switch {
	case n == len(words):
		return "", "", Size{}, Size{}, fmt.Errorf("%w: %q is too wide as a whole but fits word by word", ErrDegenerateMeasurement, text)
	case n == 0:
		line, restWords, err = w.splitWord(words)
		if err != nil {
			return "", "", Size{}, Size{}, err
		}
	case w.dir == forward:
		line = strings.Join(words[:n], " ")
		restWords = words[n:]
	default:
		line = strings.Join(words[len(words)-n:], " ")
		restWords = words[:len(words)-n]
	}

	size, err = w.size(line)
	if err != nil {
		return "", "", Size{}, Size{}, err
	}
	return line, strings.Join(restWords, " "), size, whole, nil
}

// packWords counts how many words, taken from the scan start, fit on one
// line when joined by spaces.
func (w *wrapper) packWords(words []string) (int, error) {
	n := 0
	for n < len(words) {
		var candidate string
		if w.dir == forward {
			candidate = strings.Join(words[:n+1], " ")
		} else {
			candidate = strings.Join(words[len(words)-n-1:], " ")
		}
		ok, err := w.fits(candidate)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		n++
	}
	return n, nil
}

// splitWord handles a first word that is wider than the line on its own.
// It packs as many of the word's grapheme clusters as fit and puts the
// remainder of the word back into the outstanding words. At least one
// cluster is always taken so that the remaining text shrinks.
func (w *wrapper) splitWord(words []string) (string, []string, error) {
	idx := 0
	if w.dir == backward {
		idx = len(words) - 1
	}
	clusters := graphemes(words[idx])
	if len(clusters) == 0 {
		return "", nil, fmt.Errorf("%w: empty word measured wider than %dpx", ErrDegenerateMeasurement, w.limit)
	}

	k := 0
	for k < len(clusters) {
		var candidate string
		if w.dir == forward {
			candidate = strings.Join(clusters[:k+1], "")
		} else {
			candidate = strings.Join(clusters[len(clusters)-k-1:], "")
		}
		ok, err := w.fits(candidate)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			break
		}
		k++
	}
	k = max(k, 1)

	if w.dir == forward {
		head, tail := strings.Join(clusters[:k], ""), strings.Join(clusters[k:], "")
		rest := words[1:]
		if tail != "" {
			rest = append([]string{tail}, rest...)
		}
		return head, rest, nil
	}
	cut := len(clusters) - k
	head, tail := strings.Join(clusters[:cut], ""), strings.Join(clusters[cut:], "")
	rest := slices.Clone(words[:idx])
	if head != "" {
		rest = append(rest, head)
	}
	return tail, rest, nil
}

// graphemes splits word into user-perceived characters, so a base letter
// and its combining marks stay together.
func graphemes(word string) []string {
	var seg segmenter.Segmenter
	seg.Init([]rune(word))
	it := seg.GraphemeIterator()
	var out []string
	for it.Next() {
		out = append(out, string(it.Grapheme().Text))
	}
	return out
}
