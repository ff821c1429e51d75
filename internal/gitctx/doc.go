// Package gitctx resolves diff sources from a git repository by shelling
// out to git.
//
// A commit is compared against its parent, or against the empty-tree
// sentinel for a root commit. Static diff blobs can also be read from a
// file or stdin. All failures here are fatal to the review run; they are
// the only point where obtaining a diff can fail outright.
package gitctx
