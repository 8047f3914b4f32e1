package metadata

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
)

func Test(t *testing.T) { TestingT(t) }

type MetadataSuite struct{}

var _ = Suite(&MetadataSuite{})

// TestDerivedGeometry covers scenario S1: dimensions=[128,64,32],
// blockDim(1,1,1)=[64,64,32], voxelType=uint16.
func (s *MetadataSuite) TestDerivedGeometry(c *C) {
	doc := []byte(`{
		"uuid": "abcdefabcdefabcdefabcdefabcdefab",
		"label": "sample",
		"voxelUnit": "micrometer",
		"compression": "none",
		"voxelType": "uint16",
		"dimensions": [128, 64, 32],
		"channels": 1,
		"angles": 1,
		"versions": [0],
		"timepointIds": [0],
		"resolutionLevels": [
			{"resolutions": [1,1,1], "blockDimensions": [64,64,32]}
		]
	}`)

	props, err := Decode(doc)
	c.Assert(err, IsNil)
	c.Assert(props.Warnings, HasLen, 0)

	base := dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}

	count, err := props.BlockCount(base)
	c.Assert(err, IsNil)
	c.Assert(count, Equals, dvid.Vector3[int32]{X: 2, Y: 1, Z: 1})

	size, err := props.BlockSize(dvid.Vector3[int32]{X: 1, Y: 0, Z: 0}, base)
	c.Assert(err, IsNil)
	c.Assert(size, Equals, dvid.Vector3[int32]{X: 64, Y: 64, Z: 32})

	c.Assert(props.ImageDim(base), Equals, dvid.Vector3[int32]{X: 128, Y: 64, Z: 32})
}

// TestEdgeBlock covers scenario S3's geometry: dimensions=[100,64,32],
// blockDim=[64,64,32] -> blockSize((1,0,0)) = [36,64,32].
func (s *MetadataSuite) TestEdgeBlock(c *C) {
	doc := []byte(`{
		"uuid": "x", "label": "x", "voxelUnit": "um", "compression": "none",
		"voxelType": "uint8", "dimensions": [100, 64, 32],
		"channels": 1, "angles": 1, "versions": [0], "timepointIds": [0],
		"resolutionLevels": [{"resolutions": [1,1,1], "blockDimensions": [64,64,32]}]
	}`)
	props, err := Decode(doc)
	c.Assert(err, IsNil)

	base := dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}
	size, err := props.BlockSize(dvid.Vector3[int32]{X: 1, Y: 0, Z: 0}, base)
	c.Assert(err, IsNil)
	c.Assert(size, Equals, dvid.Vector3[int32]{X: 36, Y: 64, Z: 32})
	c.Assert(props.IsValidBlockCoord(dvid.Vector3[int32]{X: 1, Y: 0, Z: 0}, base), Equals, true)
	c.Assert(props.IsValidBlockCoord(dvid.Vector3[int32]{X: 2, Y: 0, Z: 0}, base), Equals, false)
}

// TestMissingRequiredFieldsWarnsButSucceeds exercises §4.1: missing required
// fields degrade to zero/empty placeholders plus a warning rather than
// failing the parse.
func (s *MetadataSuite) TestMissingRequiredFieldsWarnsButSucceeds(c *C) {
	props, err := Decode([]byte(`{"label": "partial"}`))
	c.Assert(err, IsNil)
	c.Assert(props.Label, Equals, "partial")
	c.Assert(props.UUID, Equals, "")
	c.Assert(len(props.Warnings) > 0, Equals, true)
}

func (s *MetadataSuite) TestStructurallyInvalidJSONFails(c *C) {
	_, err := Decode([]byte(`not json`))
	c.Assert(err, NotNil)
}

func (s *MetadataSuite) TestOptionalFieldsAbsentByDefault(c *C) {
	props, err := Decode([]byte(`{"uuid":"x"}`))
	c.Assert(err, IsNil)
	c.Assert(props.VoxelResolution.Present, Equals, false)
	c.Assert(props.Transformations.Present, Equals, false)
}

func (s *MetadataSuite) TestOptionalResolutionUnitDecodes(c *C) {
	props, err := Decode([]byte(`{"timepointResolution": {"value": 2.5, "unit": "second"}}`))
	c.Assert(err, IsNil)
	c.Assert(props.TimepointResolution.Present, Equals, true)
	c.Assert(props.TimepointResolution.Value.Value, Equals, 2.5)
	c.Assert(props.TimepointResolution.Value.Unit, Equals, "second")
}

func (s *MetadataSuite) TestLevelNotFound(c *C) {
	props, err := Decode([]byte(`{"resolutionLevels": [{"resolutions":[1,1,1],"blockDimensions":[64,64,32]}]}`))
	c.Assert(err, IsNil)
	_, err = props.BlockDim(dvid.Vector3[int32]{X: 2, Y: 2, Z: 2})
	c.Assert(err, NotNil)
}

func (s *MetadataSuite) TestHasTimepointAndVersion(c *C) {
	props := &DatasetProperties{TimepointIds: []int32{0, 1, 2}, Versions: []int32{0}}
	c.Assert(props.HasTimepoint(1), Equals, true)
	c.Assert(props.HasTimepoint(5), Equals, false)
	c.Assert(props.HasVersion(0), Equals, true)
	c.Assert(props.HasVersion(7), Equals, false)
}
