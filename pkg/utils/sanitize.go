package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeIdentifier trims a login identifier and drops control characters.
// Case is preserved; comparisons decide whether case matters.
func SanitizeIdentifier(input string) string {
	return removeControlChars(strings.TrimSpace(input))
}

// SanitizeEmail lowercases, strips markup and control characters.
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = stripHTML(email)
	return removeControlChars(email)
}

// SanitizeText trims free text typed into wizard fields, keeping inner
// whitespace (SSIDs may contain spaces).
func SanitizeText(input string) string {
	return removeControlChars(strings.TrimSpace(input))
}

// IsEmailShaped is the routing predicate for customer logins.
func IsEmailShaped(identifier string) bool {
	return strings.Contains(identifier, "@")
}

func stripHTML(input string) string {
	return htmlTagRe.ReplaceAllString(input, "")
}

func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
