// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aip31068

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unknownGlyph replaces runes the ROM cannot show.
const unknownGlyph = '?'

// romA00 maps the non ASCII glyphs of character ROM A00.
var romA00 = map[rune]byte{
	'¥': 0x5c,
	'→': 0x7e,
	'←': 0x7f,
	'·': 0xa5,
	'°': 0xdf,
	'α': 0xe0,
	'ä': 0xe1,
	'β': 0xe2,
	'ε': 0xe3,
	'µ': 0xe4,
	'μ': 0xe4,
	'σ': 0xe5,
	'ρ': 0xe6,
	'√': 0xe8,
	'¢': 0xec,
	'ñ': 0xee,
	'ö': 0xef,
	'θ': 0xf2,
	'∞': 0xf3,
	'Ω': 0xf4,
	'ü': 0xf5,
	'Σ': 0xf6,
	'π': 0xf7,
	'千': 0xfa,
	'万': 0xfb,
	'円': 0xfc,
	'÷': 0xfd,
	'█': 0xff,
}

// Half-width katakana are laid out in ROM in Unicode order.
const (
	katakanaFirst rune = 0xff61
	katakanaLast  rune = 0xff9f
	katakanaROM   byte = 0xa1
)

// NewEncoder returns a Transformer that maps UTF-8 text onto character ROM
// A00, one output byte per input rune.
//
// Printable ASCII is kept, except '~' and DEL which the ROM does not have.
// Codes 0 to 7 are kept so that CGRAM glyphs can be printed inline. Runes
// without a ROM glyph are folded to their unaccented letter when there is
// one, and to '?' otherwise.
func NewEncoder() transform.Transformer {
	return encoder{}
}

type encoder struct {
	transform.NopResetter
}

func (encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		dst[nDst] = romByte(r)
		nDst++
		nSrc += size
	}
	return nDst, nSrc, nil
}

func romByte(r rune) byte {
	switch {
	case r < 0x08:
		return byte(r)
	case r >= 0x20 && r <= 0x7d:
		return byte(r)
	case r >= katakanaFirst && r <= katakanaLast:
		return katakanaROM + byte(r-katakanaFirst)
	}
	if b, ok := romA00[r]; ok {
		return b
	}
	if r >= 0x80 {
		// NFKD splits an accented letter into its base letter followed by
		// combining marks.
		if base, _ := utf8.DecodeRuneInString(norm.NFKD.String(string(r))); base >= 0x20 && base <= 0x7d {
			return byte(base)
		}
	}
	return unknownGlyph
}

var glyphs = func() map[byte]rune {
	m := make(map[byte]rune, len(romA00))
	for r, b := range romA00 {
		// µ and μ share a glyph; keep the micro sign.
		if prev, ok := m[b]; ok && prev < r {
			continue
		}
		m[b] = r
	}
	return m
}()

// Glyph returns the rune character ROM A00 shows for code c. CGRAM codes and
// codes without a known glyph return unicode.ReplacementChar.
func Glyph(c byte) rune {
	if r, ok := glyphs[c]; ok {
		return r
	}
	switch {
	case c >= 0x20 && c <= 0x7d:
		return rune(c)
	case c >= katakanaROM && c <= katakanaROM+byte(katakanaLast-katakanaFirst):
		return katakanaFirst + rune(c-katakanaROM)
	}
	return unicode.ReplacementChar
}
