package shaders

import (
	_ "embed"
)

//go:embed cube.wgsl
var CubeWGSL string

// Entry points in CubeWGSL.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)
