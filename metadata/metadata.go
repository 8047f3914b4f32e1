package metadata

import (
	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/errs"
)

// ResolutionLevel is one declared rung of the resolution pyramid: the
// downsample factor per axis (integer >= 1, (1,1,1) is the base level) and
// the block size in voxels at that level.
type ResolutionLevel struct {
	Resolutions     dvid.Vector3[int32]
	BlockDimensions dvid.Vector3[int32]
}

// Optional wraps a value that may be absent from the metadata document,
// per spec.md §9's "Optional metadata fields ... present|absent" note.
// The zero value is the absent marker.
type Optional[T any] struct {
	Value   T
	Present bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Present: true} }

// DatasetProperties is the immutable record described in spec.md §3,
// fetched once per logical operation and safe to share read-only.
type DatasetProperties struct {
	UUID        string
	Label       string
	VoxelType   VoxelType
	Compression string

	Dimensions dvid.Vector3[int32]
	Channels   int32
	Angles     int32

	VoxelUnit       string
	VoxelResolution Optional[dvid.Vector3[float64]]

	TimepointResolution Optional[dvid.ResolutionUnit]
	ChannelResolution   Optional[dvid.ResolutionUnit]
	AngleResolution     Optional[dvid.ResolutionUnit]

	Transformations  Optional[string]
	ViewRegistrations Optional[string]

	ResolutionLevels []ResolutionLevel
	Versions         []int32
	TimepointIds     []int32

	// Warnings accumulates the MalformedMetadata conditions recovered
	// during parsing (spec.md §4.1: "recovered into zero/empty
	// placeholders so higher layers can surface the anomaly without
	// crashing during parse").
	Warnings []error
}

// levelFor returns the ResolutionLevel whose Resolutions equals r.
func (p *DatasetProperties) levelFor(r dvid.Vector3[int32]) (ResolutionLevel, bool) {
	for _, lvl := range p.ResolutionLevels {
		if lvl.Resolutions.Equals(r) {
			return lvl, true
		}
	}
	return ResolutionLevel{}, false
}

// BlockDim looks up the resolution level whose Resolutions == r and returns
// its BlockDimensions.  Fails with LevelNotFound if no level matches.
func (p *DatasetProperties) BlockDim(r dvid.Vector3[int32]) (dvid.Vector3[int32], error) {
	lvl, ok := p.levelFor(r)
	if !ok {
		return dvid.Vector3[int32]{}, errs.NewLevelNotFound([3]int32{r.X, r.Y, r.Z})
	}
	return lvl.BlockDimensions, nil
}

// ImageDim returns dimensions / r, component-wise integer division.
func (p *DatasetProperties) ImageDim(r dvid.Vector3[int32]) dvid.Vector3[int32] {
	return p.Dimensions.Div(r)
}

// BlockCount returns ceil(imageDim(r) / blockDim(r)), component-wise.
func (p *DatasetProperties) BlockCount(r dvid.Vector3[int32]) (dvid.Vector3[int32], error) {
	blockDim, err := p.BlockDim(r)
	if err != nil {
		return dvid.Vector3[int32]{}, err
	}
	return dvid.CeilDivInt32(p.ImageDim(r), blockDim), nil
}

// BlockSize returns the effective voxel extent of block coordinate c at
// resolution r:
//
//	max(0, min(imageExtent(r), (c+1)*blockDim(r)) - max(0, c*blockDim(r)))
//
// Blocks on the far edge of the image may be smaller than blockDim(r).
func (p *DatasetProperties) BlockSize(c, r dvid.Vector3[int32]) (dvid.Vector3[int32], error) {
	blockDim, err := p.BlockDim(r)
	if err != nil {
		return dvid.Vector3[int32]{}, err
	}
	imageDim := p.ImageDim(r)
	one := dvid.Vector3[int32]{1, 1, 1}
	lo := c.Mul(blockDim).Max(dvid.ZeroInt32)
	hi := c.Add(one).Mul(blockDim).Min(imageDim)
	size := hi.Sub(lo).Max(dvid.ZeroInt32)
	return size, nil
}

// IsValidBlockCoord reports whether c's effective size is strictly positive
// on all axes at resolution r (spec.md §3 invariant 4).
func (p *DatasetProperties) IsValidBlockCoord(c, r dvid.Vector3[int32]) bool {
	size, err := p.BlockSize(c, r)
	if err != nil {
		return false
	}
	return size.X > 0 && size.Y > 0 && size.Z > 0
}

// AllResolutions returns the sequence of declared resolution factors,
// preserving metadata document order.
func (p *DatasetProperties) AllResolutions() []dvid.Vector3[int32] {
	out := make([]dvid.Vector3[int32], len(p.ResolutionLevels))
	for i, lvl := range p.ResolutionLevels {
		out[i] = lvl.Resolutions
	}
	return out
}

// HasTimepoint reports whether t is among the dataset's declared timepointIds.
func (p *DatasetProperties) HasTimepoint(t int32) bool {
	for _, id := range p.TimepointIds {
		if id == t {
			return true
		}
	}
	return false
}

// HasVersion reports whether v is among the dataset's declared versions.
func (p *DatasetProperties) HasVersion(v int32) bool {
	for _, id := range p.Versions {
		if id == v {
			return true
		}
	}
	return false
}
