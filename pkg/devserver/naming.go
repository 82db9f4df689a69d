package devserver

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxNameWords = 7
	maxNameLen   = 50
)

var greetings = []string{"hi", "hello", "hey", "greetings", "good morning", "good afternoon", "good evening"}

var titleCaser = cases.Title(language.English)

// clean lowercases s and replaces punctuation with spaces.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}

func hasGreeting(words []string) bool {
	padded := " " + strings.Join(words, " ") + " "
	for _, g := range greetings {
		if strings.Contains(padded, " "+g+" ") {
			return true
		}
	}
	return false
}

// isGreeting reports whether a message is a short greeting.
func isGreeting(msg string) bool {
	words := strings.Fields(clean(msg))
	if len(words) == 0 || len(words) > 10 {
		return false
	}
	return hasGreeting(words)
}

// isSubstantive reports whether a question is worth naming a session after.
func isSubstantive(question string) bool {
	words := strings.Fields(clean(question))
	return len(words) > 2 && !hasGreeting(words)
}

// sessionNameFromQuestion builds a title from the first words of question.
func sessionNameFromQuestion(question string) string {
	words := strings.FieldsFunc(question, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if len(words) == 0 {
		return "New Chat"
	}

	name := strings.Join(words[:min(len(words), maxNameWords)], " ")
	if len(words) > maxNameWords {
		name += "..."
	}
	name = titleCaser.String(name)

	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen-3]) + "..."
	}
	return name
}
