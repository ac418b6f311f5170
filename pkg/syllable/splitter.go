// Package syllable splits recognized text into syllable labels.
package syllable

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Splitter turns transcribed text into an ordered label sequence
type Splitter interface {
	Split(text string) []string
}

// PatternSplitter performs a greedy longest-match scan over a pattern
// table. Text matching no pattern is skipped one rune at a time.
type PatternSplitter struct {
	patterns map[string][]string
	keys     []string
	romanize map[string]string
}

// NewPatternSplitter builds a splitter from patterns, each mapping a
// written form to the labels it expands to
func NewPatternSplitter(patterns map[string][]string, romanize map[string]string) *PatternSplitter {
	ps := &PatternSplitter{
		patterns: make(map[string][]string, len(patterns)),
		romanize: make(map[string]string, len(romanize)),
	}
	for k, v := range patterns {
		key := norm.NFC.String(k)
		ps.patterns[key] = v
		ps.keys = append(ps.keys, key)
	}
	for k, v := range romanize {
		ps.romanize[norm.NFC.String(k)] = v
	}

	// longest first, ties broken lexically so scans are deterministic
	sort.Slice(ps.keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(ps.keys[i]), utf8.RuneCountInString(ps.keys[j])
		if li != lj {
			return li > lj
		}
		return ps.keys[i] < ps.keys[j]
	})
	return ps
}

// Split implements Splitter
func (ps *PatternSplitter) Split(text string) []string {
	text = norm.NFC.String(text)
	out := []string{}

	for i := 0; i < len(text); {
		matched := false
		for _, key := range ps.keys {
			if strings.HasPrefix(text[i:], key) {
				out = append(out, ps.patterns[key]...)
				i += len(key)
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
		}
	}
	return out
}

// Romanize returns the Latin form of label, or label itself when unknown
func (ps *PatternSplitter) Romanize(label string) string {
	if r, ok := ps.romanize[norm.NFC.String(label)]; ok {
		return r
	}
	return label
}

// RomanizeAll maps Romanize over labels
func (ps *PatternSplitter) RomanizeAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = ps.Romanize(l)
	}
	return out
}
