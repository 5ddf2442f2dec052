package main

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

// Vertex is one corner of the textured triangle. Positions are y-up and
// texture coordinates have their origin at the bottom left of the image, the
// vertex shader converts both for Vulkan.
type Vertex struct {
	position           linmath.Vec2
	textureCoordinates linmath.Vec2
}

// triangleVertices returns the left, right and top corners of the triangle.
func triangleVertices() []Vertex {
	return []Vertex{
		{
			position:           linmath.Vec2{-0.5, -0.5},
			textureCoordinates: linmath.Vec2{0, 0},
		},
		{
			position:           linmath.Vec2{0.5, -0.5},
			textureCoordinates: linmath.Vec2{1, 0},
		},
		{
			position:           linmath.Vec2{0, 0.5},
			textureCoordinates: linmath.Vec2{0.5, 1},
		},
	}
}

func GetVertexSize() uint32 {
	return uint32(unsafe.Sizeof(Vertex{}))
}

func GetVertexBindingDescription() vk.VertexInputBindingDescription {
	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    GetVertexSize(),
		InputRate: vk.VertexInputRateVertex,
	}

	return bindingDescription
}

func GetVertexAttributeDescriptions() [2]vk.VertexInputAttributeDescription {
	attrDescr := [2]vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.textureCoordinates)),
		},
	}

	return attrDescr
}

// rgbf converts a 0xRRGGBB literal into an opaque color with float channels.
func rgbf(hex uint32) linmath.Vec4 {
	return linmath.Vec4{
		float32(hex>>16&0xff) / 255,
		float32(hex>>8&0xff) / 255,
		float32(hex&0xff) / 255,
		1,
	}
}

// pushConstants mirrors the push constant block of the fragment shader.
type pushConstants struct {
	color linmath.Vec4
}
