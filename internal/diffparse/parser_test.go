package diffparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/x.ts b/x.ts
index 1111111..2222222 100644
--- a/x.ts
+++ b/x.ts
@@ -1,2 +1,3 @@
 line1
+added
-old
`

func TestParse_SingleFile(t *testing.T) {
	d := Parse(sampleDiff, Options{})
	require.Len(t, d.Files, 1)

	f := d.Files[0]
	assert.Equal(t, "x.ts", f.Path)
	assert.Equal(t, StatusModified, f.Status)
	assert.Empty(t, f.OldPath)
	assert.Equal(t, 1, f.Additions)
	assert.Equal(t, 1, f.Deletions)

	require.Len(t, f.Changes, 3)
	assert.Equal(t, Change{Kind: ChangeContext, LineNumber: 1, Content: "line1"}, f.Changes[0])
	assert.Equal(t, Change{Kind: ChangeAdd, LineNumber: 2, Content: "added"}, f.Changes[1])
	// Delete lines record the running new-file counter without advancing
	// it, so a delete after a context and an add sits at the counter's
	// current value.
	assert.Equal(t, Change{Kind: ChangeDelete, LineNumber: 3, Content: "old"}, f.Changes[2])
}

func TestParse_DeleteFirstInHunk(t *testing.T) {
	diff := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -10,3 +10,2 @@
-gone
 kept
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1)
	changes := d.Files[0].Changes
	require.Len(t, changes, 2)

	// A delete at the very head of a hunk carries the hunk's new-start
	// value; the counter only advances on add/context lines.
	assert.Equal(t, Change{Kind: ChangeDelete, LineNumber: 10, Content: "gone"}, changes[0])
	assert.Equal(t, Change{Kind: ChangeContext, LineNumber: 10, Content: "kept"}, changes[1])
}

func TestParse_AdditionsMatchChangeCounts(t *testing.T) {
	diff := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,4 +1,6 @@
 ctx
+one
+two
-del
 ctx2
+three
diff --git a/b.go b/b.go
--- a/b.go
+++ b/b.go
@@ -1 +1,2 @@
 ctx
+four
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 2)

	totalAdds := 0
	for _, f := range d.Files {
		adds, dels := 0, 0
		for _, c := range f.Changes {
			switch c.Kind {
			case ChangeAdd:
				adds++
			case ChangeDelete:
				dels++
			}
		}
		assert.Equal(t, f.Additions, adds, "%s additions", f.Path)
		assert.Equal(t, f.Deletions, dels, "%s deletions", f.Path)
		totalAdds += adds
	}
	assert.Equal(t, d.TotalAdditions, totalAdds)
	assert.Equal(t, 4, d.TotalAdditions)
	assert.Equal(t, 1, d.TotalDeletions)
}

func TestParse_LineNumberMonotonicity(t *testing.T) {
	diff := `diff --git a/m.go b/m.go
--- a/m.go
+++ b/m.go
@@ -5,6 +5,8 @@
 a
+b
 c
-d
+e
+f
 g
@@ -40,2 +42,3 @@
 h
+i
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1)

	last := 0
	for _, c := range d.Files[0].Changes {
		if c.Kind == ChangeDelete {
			continue
		}
		assert.Greater(t, c.LineNumber, last, "add/context lines strictly increase within and across hunks here")
		last = c.LineNumber
	}
}

func TestParse_ExtensionFiltering(t *testing.T) {
	diff := `diff --git a/keep.ts b/keep.ts
--- a/keep.ts
+++ b/keep.ts
@@ -1 +1,2 @@
 x
+y
diff --git a/drop.png b/drop.png
--- a/drop.png
+++ b/drop.png
@@ -1 +1,2 @@
 x
+y
diff --git a/notes.txt b/notes.txt
--- a/notes.txt
+++ b/notes.txt
@@ -1 +1,2 @@
 x
+y
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1)
	assert.Equal(t, "keep.ts", d.Files[0].Path)
	assert.Equal(t, 1, d.TotalAdditions, "totals computed over retained files only")

	d = Parse(diff, Options{Extensions: []string{".txt"}})
	require.Len(t, d.Files, 1)
	assert.Equal(t, "notes.txt", d.Files[0].Path)
}

func TestParse_NoMatchingFilesIsNotAnError(t *testing.T) {
	diff := `diff --git a/image.png b/image.png
--- a/image.png
+++ b/image.png
@@ -1 +1 @@
-x
+y
`
	d := Parse(diff, Options{})
	assert.True(t, d.IsEmpty())
	assert.Equal(t, 0, d.TotalAdditions)
	assert.Equal(t, 0, d.TotalDeletions)
}

func TestParse_NewAndDeletedFiles(t *testing.T) {
	diff := `diff --git a/new.go b/new.go
new file mode 100644
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+package main
+func main() {}
diff --git a/old.go b/old.go
deleted file mode 100644
--- a/old.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package main
-func main() {}
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 2)
	assert.Equal(t, StatusAdded, d.Files[0].Status)
	assert.Equal(t, 2, d.Files[0].Additions)
	assert.Equal(t, StatusDeleted, d.Files[1].Status)
	assert.Equal(t, 2, d.Files[1].Deletions)
}

func TestParse_Rename(t *testing.T) {
	diff := `diff --git a/before.go b/after.go
similarity index 98%
rename from before.go
rename to after.go
--- a/before.go
+++ b/after.go
@@ -1 +1,2 @@
 x
+y
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1)
	assert.Equal(t, StatusRenamed, d.Files[0].Status)
	assert.Equal(t, "after.go", d.Files[0].Path)
	assert.Equal(t, "before.go", d.Files[0].OldPath)
}

func TestParse_MalformedBlockDropped(t *testing.T) {
	diff := `diff --git garbage-header-without-paths
+not counted
diff --git a/good.go b/good.go
--- a/good.go
+++ b/good.go
@@ -1 +1,2 @@
 x
+y
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1, "malformed block is dropped, parsing continues")
	assert.Equal(t, "good.go", d.Files[0].Path)
}

func TestParse_SummaryPreferred(t *testing.T) {
	d := Parse(sampleDiff, Options{Summary: "1 file changed, 1 insertion(+), 1 deletion(-)"})
	assert.Equal(t, "1 file changed, 1 insertion(+), 1 deletion(-)", d.Summary)

	d = Parse(sampleDiff, Options{})
	assert.Contains(t, d.Summary, "1 files changed")
	assert.Contains(t, d.Summary, "1 insertions(+)")
}

func TestParse_IgnoresNoNewlineMarker(t *testing.T) {
	diff := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1 +1 @@
-x
+y
\ No newline at end of file
`
	d := Parse(diff, Options{})
	require.Len(t, d.Files, 1)
	assert.Len(t, d.Files[0].Changes, 2)
}

func TestParse_EmptyInput(t *testing.T) {
	d := Parse("", Options{})
	assert.True(t, d.IsEmpty())
	d = Parse(strings.Repeat("\n", 5), Options{})
	assert.True(t, d.IsEmpty())
}
