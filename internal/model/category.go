package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Category tags are embedded in transaction descriptions as a leading
// bracketed prefix: "[#Groceries] weekly shop". A description with no
// recognizable tag has category "".
var categoryTagRe = regexp.MustCompile(`^\s*\[#([^\]]+)\]\s*(.*)$`)

// DecodeCategory splits an encoded description into its category tag and
// remaining text. Both parts are trimmed.
func DecodeCategory(encoded string) (category, description string) {
	m := categoryTagRe.FindStringSubmatch(encoded)
	if m == nil {
		return "", encoded
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// EncodeCategory embeds a category tag into a description. An empty
// category returns the description unchanged.
func EncodeCategory(category, description string) string {
	if category == "" {
		return description
	}
	return fmt.Sprintf("[#%s] %s", category, description)
}
