// Package finding defines the shared finding, stage-result, and report
// types threaded through the review pipeline and its renderers.
package finding
