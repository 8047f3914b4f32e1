/*
	Package resample defines the sampling-mode contract spec.md §1 leaves as
	an external collaborator ("the resampling kernel ... specified only by
	its sampling-mode contract") and ships the one implementation exercised
	by a testable property in spec.md §8 (property 8, scenario S6): nearest
	neighbour. Linear and Lanczos are declared so WriteWithPyramids' selector
	enum is complete, but the built-in Sampler only honors NearestNeighbour;
	a caller wanting the others supplies their own Sampler.
*/
package resample

import (
	"fmt"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/image"
)

// SamplingMode selects how a lower-resolution pyramid level is derived from
// the full-resolution source image.
type SamplingMode int

const (
	NearestNeighbour SamplingMode = iota
	Linear
	Lanczos
)

func (m SamplingMode) String() string {
	switch m {
	case NearestNeighbour:
		return "NearestNeighbour"
	case Linear:
		return "Linear"
	case Lanczos:
		return "Lanczos"
	default:
		return "Unknown"
	}
}

// ErrUnsupportedMode is returned by Sampler when asked for a mode it cannot
// perform.
type ErrUnsupportedMode struct{ Mode SamplingMode }

func (e *ErrUnsupportedMode) Error() string {
	return fmt.Sprintf("resample: sampling mode %s is not implemented by this sampler", e.Mode)
}

// Sampler resamples a source image to a new extent under a chosen mode.
type Sampler[T image.Scalar] interface {
	Resample(src *image.Image[T], dstExtent dvid.Vector3[int32], mode SamplingMode) (*image.Image[T], error)
}

// Default is the built-in Sampler: nearest-neighbour only.
type Default[T image.Scalar] struct{}

func (Default[T]) Resample(src *image.Image[T], dstExtent dvid.Vector3[int32], mode SamplingMode) (*image.Image[T], error) {
	if mode != NearestNeighbour {
		return nil, &ErrUnsupportedMode{Mode: mode}
	}
	return NearestNeighbourResample(src, dstExtent), nil
}

// NearestNeighbourResample maps each destination voxel back to the nearest
// source voxel by proportional scaling along each axis.
func NearestNeighbourResample[T image.Scalar](src *image.Image[T], dstExtent dvid.Vector3[int32]) *image.Image[T] {
	srcExtent := src.Extent()
	dst := image.New[T](dstExtent)
	if dstExtent.X == 0 || dstExtent.Y == 0 || dstExtent.Z == 0 {
		return dst
	}
	for z := int32(0); z < dstExtent.Z; z++ {
		sz := mapNearest(z, dstExtent.Z, srcExtent.Z)
		for y := int32(0); y < dstExtent.Y; y++ {
			sy := mapNearest(y, dstExtent.Y, srcExtent.Y)
			for x := int32(0); x < dstExtent.X; x++ {
				sx := mapNearest(x, dstExtent.X, srcExtent.X)
				v, _ := src.At(dvid.Vector3[int32]{X: sx, Y: sy, Z: sz})
				dst.Set(dvid.Vector3[int32]{X: x, Y: y, Z: z}, v)
			}
		}
	}
	return dst
}

// mapNearest maps destination index d (out of dstLen) to the nearest source
// index (out of srcLen) using proportional (floor) scaling, matching the
// deterministic downsample scenario S6 checks against.
func mapNearest(d, dstLen, srcLen int32) int32 {
	if dstLen == 0 {
		return 0
	}
	s := int64(d) * int64(srcLen) / int64(dstLen)
	if s >= int64(srcLen) {
		s = int64(srcLen) - 1
	}
	if s < 0 {
		s = 0
	}
	return int32(s)
}
