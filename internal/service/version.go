package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"filevault/internal/domain/repositories"
	"filevault/internal/storage"
	"filevault/internal/utils"
)

// VersionNamer assigns collision-free, versioned stored filenames within
// a folder. The catalog is the primary source of the next version number;
// the filesystem is the authority of last resort, consulted so no
// overwrite can happen even when the catalog is behind reality (e.g. an
// orphaned blob with no catalog row).
//
// Versioning is keyed on the base name: re-uploading report.pdf yields
// report.pdf, report_v1.pdf, report_v2.pdf, while notes.txt in the same
// folder starts its own independent sequence.
//
// A base name that already contains a literal _v<digits> suffix the user
// supplied (plan_v2.pdf uploaded first) is indistinguishable from a name
// this namer produced and seeds the sequence at that number. Inherited
// ambiguity; the disk recheck still guarantees no overwrite.
type VersionNamer struct {
	files repositories.FileRepository
	store *storage.DiskStore
}

// NewVersionNamer creates a version namer
func NewVersionNamer(files repositories.FileRepository, store *storage.DiskStore) *VersionNamer {
	return &VersionNamer{
		files: files,
		store: store,
	}
}

// Assign produces the stored filename and revision for a desired upload
// name. dir is the folder's physical directory, already materialized.
func (n *VersionNamer) Assign(ctx context.Context, folderID, dir, desired string) (string, int, error) {
	base, ext := utils.SplitExt(desired)

	siblings, err := n.files.ListVersioned(ctx, folderID, base, ext)
	if err != nil {
		return "", 0, err
	}

	// The repository LIKE filter is coarse; re-parse with the exact
	// versioned-sibling pattern before trusting a row's number.
	pattern, err := regexp.Compile(`^` + regexp.QuoteMeta(base) + `_v(\d+)` + regexp.QuoteMeta(ext) + `$`)
	if err != nil {
		return "", 0, fmt.Errorf("compile version pattern: %w", err)
	}

	version := 0
	maxSeen := -1
	for _, sibling := range siblings {
		m := pattern.FindStringSubmatch(sibling.Filename)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v > maxSeen {
			maxSeen = v
		}
	}
	if maxSeen >= 0 {
		version = maxSeen + 1
	}

	// First upload of a base name keeps its bare name at revision 0
	candidate := desired
	if version > 0 {
		candidate = fmt.Sprintf("%s_v%d%s", base, version, ext)
	}

	// Defensive collision check against catalog/filesystem drift: never
	// hand out a name that already exists physically.
	for n.store.Exists(dir, candidate) {
		version++
		candidate = fmt.Sprintf("%s_v%d%s", base, version, ext)
	}

	return candidate, version, nil
}
