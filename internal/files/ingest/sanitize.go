package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/emergencybox/emergencybox/internal/files"
)

var (
	fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	categoryUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// SanitizeFileName maps a client-supplied name onto the characters allowed
// on disk. Unlike category names, file names keep their dots.
func SanitizeFileName(name string) string {
	name = filepath.Base(name)

	safe := fileNameUnsafe.ReplaceAllString(name, "_")
	if strings.Trim(safe, "._") == "" {
		return "file"
	}

	return safe
}

// ResolveCategory decides the folder an upload lands in. Fixed categories
// must already be clean tokens; the custom sentinel takes the client's
// folder name with every disallowed character stripped.
func ResolveCategory(category, customFolder string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	if category != CategoryCustom {
		if categoryUnsafe.MatchString(category) {
			return "", files.ErrInvalidCategory
		}
		return category, nil
	}

	folder := categoryUnsafe.ReplaceAllString(strings.TrimSpace(customFolder), "")
	if folder == "" {
		return "", files.ErrInvalidCategory
	}

	return folder, nil
}
