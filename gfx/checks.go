//go:build !gfxfast

package gfx

// checked enables descriptive precondition panics in drawing primitives.
const checked = true
