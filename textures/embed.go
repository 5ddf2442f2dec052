package textures

import "embed"

// StoneTGA is the texture drawn on the triangle.
const StoneTGA = "stone.tga"

// FS contains the textures used by the example. It makes it possible to
// generate a binary and just copy it to another machine.
//
//go:embed stone.tga
var FS embed.FS
