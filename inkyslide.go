package inkyslide

import _ "embed"

//go:embed VERSION
var Version string

//go:embed inkyslide.toml
var DefaultConfig string
