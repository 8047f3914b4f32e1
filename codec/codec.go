/*
	Package codec implements C2: the exact byte layout of one block payload
	on the wire (spec.md §4.2) and safe encode/decode against an
	arbitrarily-offset destination or source sub-volume.

	Wire layout:

	  bytes 0..11:  three little-endian uint32 = effective block size (x,y,z)
	  bytes 12..  : voxels in z-major, then y, then x order (x fastest
	                varying); each voxel occupies ElementSize(voxelType)
	                bytes, written big-endian on the wire.

	The per-element byte reversal is the minimal conversion between the
	server's big-endian wire format and a little-endian host's native
	representation (spec.md §4.2 rationale).  Revision pinned per the
	z-major ordering resolved in DESIGN.md's Open Question discussion.
*/
package codec

import (
	"encoding/binary"
	"math"

	"golang.org/x/mod/semver"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/errs"
	"github.com/fiji-hpc/hpc-datastore-go/image"
)

// Revision identifies which answer to spec.md §9's "z-major vs x-major"
// Open Question this codec implements.  Checked with golang.org/x/mod/semver
// so a future revision bump is validated at init time rather than silently
// assumed.
const Revision = "v1"

func init() {
	if !semver.IsValid(Revision) {
		panic("codec: invalid Revision constant " + Revision)
	}
}

const headerBytes = 12

// HeaderSize is the fixed byte length of a block payload's size header.
const HeaderSize = headerBytes

// DecodeHeader reads the three little-endian uint32 block-size components
// from the start of payload.
func DecodeHeader(payload []byte) (size dvid.Vector3[int32], err error) {
	if len(payload) < headerBytes {
		return dvid.Vector3[int32]{}, errs.NewShortPayload(headerBytes, len(payload))
	}
	bx := binary.LittleEndian.Uint32(payload[0:4])
	by := binary.LittleEndian.Uint32(payload[4:8])
	bz := binary.LittleEndian.Uint32(payload[8:12])
	return dvid.Vector3[int32]{X: int32(bx), Y: int32(by), Z: int32(bz)}, nil
}

// PayloadLen returns the total encoded length of a block of size bx,by,bz
// at the given element size: 12 + bx*by*bz*elemSize.
func PayloadLen(size dvid.Vector3[int32], elemSize int) int64 {
	return int64(headerBytes) + int64(size.X)*int64(size.Y)*int64(size.Z)*int64(elemSize)
}

func reverseInto(dst, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = src[n-1-i]
	}
}

func elementToBytes[T image.Scalar](v T, buf []byte) {
	switch x := any(v).(type) {
	case uint8:
		buf[0] = x
	case int8:
		buf[0] = byte(x)
	case uint16:
		binary.LittleEndian.PutUint16(buf, x)
	case int16:
		binary.LittleEndian.PutUint16(buf, uint16(x))
	case uint32:
		binary.LittleEndian.PutUint32(buf, x)
	case int32:
		binary.LittleEndian.PutUint32(buf, uint32(x))
	case uint64:
		binary.LittleEndian.PutUint64(buf, x)
	case int64:
		binary.LittleEndian.PutUint64(buf, uint64(x))
	case float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(x))
	}
}

func bytesToElement[T image.Scalar](buf []byte) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return any(buf[0]).(T)
	case int8:
		return any(int8(buf[0])).(T)
	case uint16:
		return any(binary.LittleEndian.Uint16(buf)).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(buf))).(T)
	case uint32:
		return any(binary.LittleEndian.Uint32(buf)).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(buf))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(buf)).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(buf))).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(buf))).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(buf))).(T)
	}
	return zero
}

// ElemSize returns the encoded width in bytes of one T voxel.
func ElemSize[T image.Scalar]() int {
	var zero T
	var buf [8]byte
	switch any(zero).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	case uint64, int64, float64:
		return 8
	}
	_ = buf
	return 0
}

// Decode reads a block payload and scatters its voxels into dest at
// destOffset.  Destination coordinates lying outside dest's extent are
// skipped silently: this is load-bearing for readRegion when a region
// starts mid-block, where destOffset may be negative on some axes.
func Decode[T image.Scalar](payload []byte, dest *image.Image[T], destOffset dvid.Vector3[int32]) error {
	size, err := DecodeHeader(payload)
	if err != nil {
		return err
	}
	elemSize := ElemSize[T]()
	need := PayloadLen(size, elemSize)
	if int64(len(payload)) < need {
		return errs.NewShortPayload(int(need), len(payload))
	}

	wireBuf := make([]byte, elemSize)
	hostBuf := make([]byte, elemSize)
	bxby := int64(size.X) * int64(size.Y)
	for z := int32(0); z < size.Z; z++ {
		for y := int32(0); y < size.Y; y++ {
			for x := int32(0); x < size.X; x++ {
				off := headerBytes + (int64(z)*bxby+int64(y)*int64(size.X)+int64(x))*int64(elemSize)
				copy(wireBuf, payload[off:off+int64(elemSize)])
				reverseInto(hostBuf, wireBuf)
				v := bytesToElement[T](hostBuf)
				dest.Set(destOffset.Add(dvid.Vector3[int32]{X: x, Y: y, Z: z}), v)
			}
		}
	}
	return nil
}

// Encode serializes the blockSize sub-volume of src starting at srcOffset
// into a wire payload: a 12-byte header followed by each voxel's bytes in
// its native representation, byte-reversed onto the wire.
func Encode[T image.Scalar](src *image.Image[T], srcOffset, blockSize dvid.Vector3[int32]) []byte {
	elemSize := ElemSize[T]()
	out := make([]byte, PayloadLen(blockSize, elemSize))
	binary.LittleEndian.PutUint32(out[0:4], uint32(blockSize.X))
	binary.LittleEndian.PutUint32(out[4:8], uint32(blockSize.Y))
	binary.LittleEndian.PutUint32(out[8:12], uint32(blockSize.Z))

	hostBuf := make([]byte, elemSize)
	bxby := int64(blockSize.X) * int64(blockSize.Y)
	for z := int32(0); z < blockSize.Z; z++ {
		for y := int32(0); y < blockSize.Y; y++ {
			for x := int32(0); x < blockSize.X; x++ {
				v, _ := src.At(srcOffset.Add(dvid.Vector3[int32]{X: x, Y: y, Z: z}))
				elementToBytes(v, hostBuf)
				off := headerBytes + (int64(z)*bxby+int64(y)*int64(blockSize.X)+int64(x))*int64(elemSize)
				reverseInto(out[off:off+int64(elemSize)], hostBuf)
			}
		}
	}
	return out
}
