// Package xlsx serializes the output model into an Excel workbook with one
// sheet per output section.
package xlsx

import (
	"fmt"
	"strings"
)

// maxSheetNameLen is the hard limit Excel places on sheet names.
const maxSheetNameLen = 31

var invalidSheetChars = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	"[", "_",
	"]", "_",
)

// sanitizeSheetName maps an arbitrary section title to a legal Excel sheet
// name: forbidden characters become underscores and the result is truncated
// to 31 characters. An empty input gets a placeholder name.
func sanitizeSheetName(name string) string {
	name = invalidSheetChars.Replace(strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	return name
}

// sheetNamer hands out sanitized, workbook-unique sheet names. Collisions
// after truncation get a numeric suffix that still fits the length limit.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]bool)}
}

func (n *sheetNamer) name(title string) string {
	base := sanitizeSheetName(title)
	candidate := base
	for i := 2; n.used[candidate]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetNameLen {
			trimmed = trimmed[:maxSheetNameLen-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	n.used[candidate] = true
	return candidate
}
