/*
	Package image gives the block codec and View something concrete to read
	from and write into.  Spec.md §1 declares the in-memory 3-D image
	container an external collaborator, "specified only by the operations
	the core requires on it" -- this package is that minimal surface: no
	resampling, no file I/O, just a flat typed voxel buffer addressed by
	Vector3 coordinates.
*/
package image

import (
	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/metadata"
)

// Scalar is the closed set of voxel element types named in spec.md §3.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Image is a flat 3-D voxel buffer, z-major then y then x (x fastest
// varying), matching the block payload's voxel ordering.
type Image[T Scalar] struct {
	extent dvid.Vector3[int32]
	data   []T
}

// New allocates an Image of the given extent, zero-filled.
func New[T Scalar](extent dvid.Vector3[int32]) *Image[T] {
	n := int64(extent.X) * int64(extent.Y) * int64(extent.Z)
	if n < 0 {
		n = 0
	}
	return &Image[T]{extent: extent, data: make([]T, n)}
}

// NewFromData wraps an existing flat buffer as an Image without copying. It
// panics if the buffer's length doesn't match extent's voxel count.
func NewFromData[T Scalar](extent dvid.Vector3[int32], data []T) *Image[T] {
	want := int64(extent.X) * int64(extent.Y) * int64(extent.Z)
	if int64(len(data)) != want {
		panic("image.NewFromData: data length does not match extent")
	}
	return &Image[T]{extent: extent, data: data}
}

func (im *Image[T]) Extent() dvid.Vector3[int32] { return im.extent }

// Data returns the flat backing slice in z-major, y, x order.
func (im *Image[T]) Data() []T { return im.data }

func (im *Image[T]) index(c dvid.Vector3[int32]) (int, bool) {
	if c.X < 0 || c.Y < 0 || c.Z < 0 || c.X >= im.extent.X || c.Y >= im.extent.Y || c.Z >= im.extent.Z {
		return 0, false
	}
	i := int64(c.Z)*int64(im.extent.X)*int64(im.extent.Y) + int64(c.Y)*int64(im.extent.X) + int64(c.X)
	return int(i), true
}

// At returns the voxel at c and whether c lies within the image's extent.
func (im *Image[T]) At(c dvid.Vector3[int32]) (T, bool) {
	i, ok := im.index(c)
	if !ok {
		var zero T
		return zero, false
	}
	return im.data[i], true
}

// Set stores v at c, silently doing nothing if c lies outside the image's
// extent.  This is the clipping behavior spec.md §9 requires of block
// decode into arbitrarily-offset destination sub-volumes.
func (im *Image[T]) Set(c dvid.Vector3[int32], v T) {
	i, ok := im.index(c)
	if !ok {
		return
	}
	im.data[i] = v
}

// voxelTypeOf maps a Go scalar zero value to its metadata.VoxelType tag.
func voxelTypeOf[T Scalar](zero T) metadata.VoxelType {
	switch any(zero).(type) {
	case uint8:
		return metadata.Uint8
	case uint16:
		return metadata.Uint16
	case uint32:
		return metadata.Uint32
	case uint64:
		return metadata.Uint64
	case int8:
		return metadata.Int8
	case int16:
		return metadata.Int16
	case int32:
		return metadata.Int32
	case int64:
		return metadata.Int64
	case float32:
		return metadata.Float32
	case float64:
		return metadata.Float64
	default:
		return ""
	}
}

// VoxelType returns the metadata.VoxelType tag corresponding to T.
func (im *Image[T]) VoxelType() metadata.VoxelType {
	var zero T
	return voxelTypeOf(zero)
}
