package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Capitalize upper-cases the first rune and lower-cases the rest,
// "NETHERLANDS" and "netherlands" both become "Netherlands".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(first)) + strings.ToLower(s[size:])
}

func isBracketed(word string) bool {
	return len(word) >= 2 && word[0] == '[' && word[len(word)-1] == ']'
}

var bracketReplacer = strings.NewReplacer("[", "", "]", "")

func stripBrackets(word string) string {
	return strings.TrimSpace(bracketReplacer.Replace(word))
}

// SplitTrailingCode splits a "<name> [<code>]" label into its name and
// country code. ok is false when the last word is not bracketed, in which
// case name is the whole trimmed label.
func SplitTrailingCode(label string) (name string, code string, ok bool) {
	label = strings.TrimSpace(label)
	words := strings.Split(label, " ")
	if len(words) < 2 || !isBracketed(words[len(words)-1]) {
		return label, "", false
	}
	name = strings.TrimSpace(strings.Join(words[:len(words)-1], " "))
	return name, stripBrackets(words[len(words)-1]), true
}

// SplitLeadingCode is SplitTrailingCode for "[<code>] <name>" labels.
func SplitLeadingCode(label string) (name string, code string, ok bool) {
	label = strings.TrimSpace(label)
	words := strings.Split(label, " ")
	if len(words) < 2 || !isBracketed(words[0]) {
		return label, "", false
	}
	name = strings.TrimSpace(strings.Join(words[1:], " "))
	return name, stripBrackets(words[0]), true
}
