//go:build gfxfast

package gfx

// Precondition checks are compiled out. Slice bounds checks still apply.
const checked = false
