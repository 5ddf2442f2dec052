package shaders

import "embed"

//go:generate ./compile.sh

// FS embeds the vertex and fragment shaders of the textured triangle. Run
// `go generate` in order to compile them again.
//
//go:embed frag.spv
//go:embed vert.spv
var FS embed.FS
