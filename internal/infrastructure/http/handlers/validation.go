package handlers

import "strings"

// Input length caps. Oversized values are rejected before they reach the
// validator or the hasher.
const (
	MaxEmailLength    = 254 // RFC 5321 path limit
	MaxPasswordLength = 128
	MaxNameLength     = 100
	MaxMessageLength  = 4096
	MaxRefreshToken   = 1024
)

func trimmedWithin(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= max
}

// SanitizeEmail lowercases and trims an address. Overlong addresses come
// back empty and fail required-field validation downstream.
func SanitizeEmail(email string) string {
	s, ok := trimmedWithin(strings.ToLower(email), MaxEmailLength)
	if !ok {
		return ""
	}
	return s
}

// SanitizePassword trims surrounding whitespace, empty on overlong input.
func SanitizePassword(password string) string {
	s, ok := trimmedWithin(password, MaxPasswordLength)
	if !ok {
		return ""
	}
	return s
}

// SanitizeName trims a profile name and hard-caps its length.
func SanitizeName(name string) string {
	s, ok := trimmedWithin(name, MaxNameLength)
	if !ok {
		return s[:MaxNameLength]
	}
	return s
}

// SanitizeMessage trims a chat message body, empty on overlong input.
func SanitizeMessage(content string) string {
	s, ok := trimmedWithin(content, MaxMessageLength)
	if !ok {
		return ""
	}
	return s
}

// TruncateRefreshToken caps the cookie value read from the request.
func TruncateRefreshToken(tok string) string {
	if len(tok) > MaxRefreshToken {
		return tok[:MaxRefreshToken]
	}
	return tok
}
