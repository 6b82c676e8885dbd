package domain

import (
	"net/mail"
	"regexp"
	"strings"
)

var vipSeparator = regexp.MustCompile(`\r\n|\r|\n|,`)

// ParseVIPList splits a raw VIP list into normalized email addresses.
// Entries are separated by newlines or commas; whitespace is trimmed,
// addresses are lowercased and invalid entries are dropped.
func ParseVIPList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := vipSeparator.Split(raw, -1)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// IsVIP reports whether the email appears on the course VIP list.
// Matching is exact after trimming and lowercasing.
func (c Course) IsVIP(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, entry := range ParseVIPList(c.VIPList) {
		if entry == email {
			return true
		}
	}
	return false
}
