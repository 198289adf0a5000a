//go:build tinygo

package main

import (
	"palvideo/app"
	"palvideo/hal"
)

func main() {
	app.Run(hal.New())
}
