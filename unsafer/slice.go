package unsafer

import (
	"unsafe"
)

// SliceToBytes interprets an arbitrary input slice as a byte slice.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceToBytes[T any](input []T) []byte {
	if len(input) == 0 {
		return nil
	}

	size := int(unsafe.Sizeof(input[0])) * len(input)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(input))), size)
}

// StructToBytes returns the memory of the value pointed by input as a byte
// slice. Same as SliceToBytes, no copy is made.
func StructToBytes[T any](input *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(input)), unsafe.Sizeof(*input))
}

// SliceBytesToUint32 repacks SPIR-V bytecode into 32 bit words. The result is a
// copy so it is properly aligned regardless of where code came from. Trailing
// bytes which do not form a whole word are dropped.
func SliceBytesToUint32(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	copy(SliceToBytes(words), code)
	return words
}
