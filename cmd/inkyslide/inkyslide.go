package main

import (
	// import image formats to register them
	_ "image/jpeg"
	_ "image/png"

	"github.com/matjam/inkyslide/internal/cli"
)

func main() {
	cli.Execute()
}
