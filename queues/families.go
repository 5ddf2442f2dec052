package queues

import (
	"github.com/ironsmile/vulkan-video-example/optional"
)

// FamilyIndices holds the indexes of Vulkan queue families needed by the programs.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// Unique returns the distinct family indices. Graphics and present are often
// the same family and a device queue may only be requested once per family.
func (f *FamilyIndices) Unique() []uint32 {
	if !f.IsComplete() {
		return nil
	}

	if f.Graphics.Get() == f.Present.Get() {
		return []uint32{f.Graphics.Get()}
	}

	return []uint32{f.Graphics.Get(), f.Present.Get()}
}
