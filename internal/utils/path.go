package utils

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxFolderPathLength = 500

	// MaxFilenameLength leaves headroom for the version suffix the namer
	// may append, keeping stored names under common filesystem limits.
	MaxFilenameLength = 200
)

var (
	// Allow alphanumeric, spaces, dots, hyphens, underscores, and forward slashes
	folderPathRegex = regexp.MustCompile(`^[a-zA-Z0-9\s.\-_/]+$`)
)

// NormalizeFolderPath turns a raw folder path into its canonical catalog
// key: leading/trailing separators stripped, lower-cased. Folder paths are
// case-insensitive for lookup purposes. Pure, total, and idempotent.
//
// Normalization does not validate; callers reject bad input with
// ValidateFolderPath before normalizing.
func NormalizeFolderPath(raw string) string {
	return strings.ToLower(strings.Trim(raw, "/"))
}

// ValidateFolderPath validates a raw folder path before normalization
func ValidateFolderPath(raw string) error {
	path := strings.Trim(strings.TrimSpace(raw), "/")

	if path == "" {
		return fmt.Errorf("folder path cannot be empty")
	}

	if len(path) > MaxFolderPathLength {
		return fmt.Errorf("folder path exceeds maximum length of %d characters", MaxFolderPathLength)
	}

	if !folderPathRegex.MatchString(path) {
		return fmt.Errorf("folder path contains invalid characters (only alphanumeric, spaces, dots, hyphens, underscores, and slashes allowed)")
	}

	if strings.Contains(path, "//") {
		return fmt.Errorf("folder path cannot contain consecutive slashes")
	}

	// Check each segment; ".." would escape the owner's subtree
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return fmt.Errorf("folder path cannot contain empty segments")
		}
		if segment == "." || segment == ".." {
			return fmt.Errorf("folder path cannot contain relative segments")
		}
	}

	return nil
}

// ValidateFilename validates an uploaded or requested filename
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if len(name) > MaxFilenameLength {
		return fmt.Errorf("filename exceeds maximum length of %d characters", MaxFilenameLength)
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("filename cannot contain path separators")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("invalid filename")
	}

	return nil
}

// SplitExt splits a filename into base and extension. The extension is
// everything from the last dot onward; a name with no dot (or only a
// leading dot) has an empty extension.
func SplitExt(filename string) (base, ext string) {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 {
		return filename, ""
	}
	return filename[:idx], filename[idx:]
}
