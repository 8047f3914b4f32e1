package codec

import (
	. "gopkg.in/check.v1"
)

type CompressSuite struct{}

var _ = Suite(&CompressSuite{})

func (s *CompressSuite) TestNoneLeavesBytesUntouched(c *C) {
	payload := []byte{1, 2, 3, 4}
	out := MaybeCompress(payload, "none")
	c.Assert(out, DeepEquals, payload)

	back, err := MaybeDecompress(payload, "none")
	c.Assert(err, IsNil)
	c.Assert(back, DeepEquals, payload)
}

func (s *CompressSuite) TestSnappyRoundTrip(c *C) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	compressed := MaybeCompress(payload, "snappy")
	c.Assert(compressed, Not(DeepEquals), payload)

	back, err := MaybeDecompress(compressed, "snappy")
	c.Assert(err, IsNil)
	c.Assert(back, DeepEquals, payload)
}
