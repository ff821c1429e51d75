package diffparse

// ChangeKind classifies a single line within a diff hunk.
type ChangeKind string

const (
	ChangeAdd     ChangeKind = "add"
	ChangeDelete  ChangeKind = "delete"
	ChangeContext ChangeKind = "context"
)

// Change is one line inside a file's diff hunk. LineNumber is the 1-based
// position in the new file for add/context lines; delete lines carry the
// counter value at the point of deletion and never advance it.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	LineNumber int        `json:"lineNumber"`
	Content    string     `json:"content"`
}

// FileStatus classifies a file's change set.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
)

// FileDiff is one file's change set within a parsed diff. Changes preserve
// hunk order; multiple hunks are concatenated in file order.
type FileDiff struct {
	Path      string     `json:"path"`
	OldPath   string     `json:"oldPath,omitempty"` // set only when renamed
	Status    FileStatus `json:"status"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Changes   []Change   `json:"changes"`
}

// ParsedDiff is the full change set for one comparison, filtered to
// supported extensions. An empty Files slice is a valid "nothing to
// analyze" result, not an error.
type ParsedDiff struct {
	Files          []FileDiff `json:"files"`
	TotalAdditions int        `json:"totalAdditions"`
	TotalDeletions int        `json:"totalDeletions"`
	Summary        string     `json:"summary"`
}

// IsEmpty reports whether no files survived extension filtering.
func (d *ParsedDiff) IsEmpty() bool { return len(d.Files) == 0 }

// Paths returns the retained file paths in diff order.
func (d *ParsedDiff) Paths() []string {
	paths := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
