//go:build !gfxfast

package video

const checked = true
