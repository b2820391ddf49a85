// Package textutil содержит эвристики для заголовков: CJK, английский текст, битая кодировка.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	cjkPattern       = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	mojibakeMarkers  = regexp.MustCompile(`[ÃâåèæïðçéÂ]|[\x{80}-\x{9f}]`)
	mojibakeNoise    = regexp.MustCompile(`Ã|Â|â€|æ·|\x{fffd}`)
	latinLetter      = regexp.MustCompile(`[A-Za-z]`)
	reinterpretOrder = []encoding.Encoding{charmap.ISO8859_1, charmap.Windows1252}
)

// FixMojibake пытается восстановить UTF-8 текст, прочитанный как Latin-1.
// Без маркеров порчи строка возвращается как есть (без пробелов по краям).
func FixMojibake(text string) string {
	s := strings.TrimSpace(text)
	if s == "" || !mojibakeMarkers.MatchString(s) {
		return s
	}

	for _, enc := range reinterpretOrder {
		raw, err := enc.NewEncoder().String(s)
		if err != nil {
			continue
		}
		if !utf8.ValidString(raw) {
			continue
		}
		if raw != "" && raw != s && !strings.ContainsRune(raw, utf8.RuneError) {
			return raw
		}
	}
	return s
}

// HasMojibakeNoise сообщает о явных следах битой кодировки.
func HasMojibakeNoise(text string) bool {
	return text != "" && mojibakeNoise.MatchString(text)
}

// HasCJK сообщает, есть ли в тексте иероглифы.
func HasCJK(text string) bool {
	return cjkPattern.MatchString(text)
}

// IsMostlyEnglish: нет иероглифов и латинских букв не меньше 6 либо не меньше четверти символов.
func IsMostlyEnglish(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" || HasCJK(s) {
		return false
	}
	letters := len(latinLetter.FindAllStringIndex(s, -1))
	if letters == 0 {
		return false
	}
	return letters >= 6 || letters*4 >= utf8.RuneCountInString(s)
}

// FirstNonEmpty возвращает первое непустое значение после обрезки пробелов.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

var spaces = regexp.MustCompile(`\s+`)

// CollapseSpaces схлопывает пробельные последовательности.
func CollapseSpaces(text string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}
