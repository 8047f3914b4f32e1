package codec

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/image"
)

func Test(t *testing.T) { TestingT(t) }

type CodecSuite struct{}

var _ = Suite(&CodecSuite{})

// TestRoundTripUint16 covers testable property 3: decoding Encode(I,o,B)
// at the same offset into a fresh image of I's extent reproduces I.
func (s *CodecSuite) TestRoundTripUint16(c *C) {
	extent := dvid.Vector3[int32]{X: 4, Y: 3, Z: 2}
	src := image.New[uint16](extent)
	n := uint16(0)
	for z := int32(0); z < extent.Z; z++ {
		for y := int32(0); y < extent.Y; y++ {
			for x := int32(0); x < extent.X; x++ {
				src.Set(dvid.Vector3[int32]{X: x, Y: y, Z: z}, n)
				n++
			}
		}
	}

	payload := Encode[uint16](src, dvid.Vector3[int32]{}, extent)

	dest := image.New[uint16](extent)
	err := Decode[uint16](payload, dest, dvid.Vector3[int32]{})
	c.Assert(err, IsNil)
	c.Assert(dest.Data(), DeepEquals, src.Data())
}

func (s *CodecSuite) TestRoundTripFloat64AndInt8(c *C) {
	roundTripFloat64(c)
	roundTripInt8(c)
}

func roundTripFloat64(c *C) {
	extent := dvid.Vector3[int32]{X: 2, Y: 2, Z: 2}
	src := image.New[float64](extent)
	src.Set(dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}, 3.5)
	payload := Encode[float64](src, dvid.Vector3[int32]{}, extent)
	dest := image.New[float64](extent)
	c.Assert(Decode[float64](payload, dest, dvid.Vector3[int32]{}), IsNil)
	v, _ := dest.At(dvid.Vector3[int32]{X: 1, Y: 1, Z: 1})
	c.Assert(v, Equals, 3.5)
}

func roundTripInt8(c *C) {
	extent := dvid.Vector3[int32]{X: 2, Y: 2, Z: 2}
	src := image.New[int8](extent)
	src.Set(dvid.Vector3[int32]{X: 0, Y: 1, Z: 0}, -5)
	payload := Encode[int8](src, dvid.Vector3[int32]{}, extent)
	dest := image.New[int8](extent)
	c.Assert(Decode[int8](payload, dest, dvid.Vector3[int32]{}), IsNil)
	v, _ := dest.At(dvid.Vector3[int32]{X: 0, Y: 1, Z: 0})
	c.Assert(v, Equals, int8(-5))
}

// TestDecodeClipsOutOfBoundsWrites covers spec.md §9's silent-clip note:
// destOffset pushing some voxels outside dest's extent must not error.
func (s *CodecSuite) TestDecodeClipsOutOfBoundsWrites(c *C) {
	extent := dvid.Vector3[int32]{X: 4, Y: 4, Z: 4}
	src := image.New[uint8](extent)
	payload := Encode[uint8](src, dvid.Vector3[int32]{}, extent)

	dest := image.New[uint8](dvid.Vector3[int32]{X: 2, Y: 2, Z: 2})
	err := Decode[uint8](payload, dest, dvid.Vector3[int32]{X: -1, Y: -1, Z: -1})
	c.Assert(err, IsNil)
}

func (s *CodecSuite) TestDecodeShortPayload(c *C) {
	dest := image.New[uint8](dvid.Vector3[int32]{X: 1, Y: 1, Z: 1})
	err := Decode[uint8](nil, dest, dvid.Vector3[int32]{})
	c.Assert(err, NotNil)

	short := make([]byte, 20)
	copy(short, Encode[uint8](image.New[uint8](dvid.Vector3[int32]{X: 4, Y: 4, Z: 4}), dvid.Vector3[int32]{}, dvid.Vector3[int32]{X: 4, Y: 4, Z: 4})[:20])
	err = Decode[uint8](short, dest, dvid.Vector3[int32]{})
	c.Assert(err, NotNil)
}

func (s *CodecSuite) TestPayloadLen(c *C) {
	c.Assert(PayloadLen(dvid.Vector3[int32]{X: 64, Y: 64, Z: 32}, 2), Equals, int64(12+64*64*32*2))
}

func (s *CodecSuite) TestElemSize(c *C) {
	c.Assert(ElemSize[uint8](), Equals, 1)
	c.Assert(ElemSize[int16](), Equals, 2)
	c.Assert(ElemSize[float32](), Equals, 4)
	c.Assert(ElemSize[float64](), Equals, 8)
}
