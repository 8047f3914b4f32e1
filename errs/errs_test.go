package errs

import (
	"errors"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type ErrsSuite struct{}

var _ = Suite(&ErrsSuite{})

func (s *ErrsSuite) TestTransportErrorUnwrap(c *C) {
	cause := errors.New("connection refused")
	err := NewTransportError(ConnectFailed, 0, cause)

	var te *TransportError
	c.Assert(errors.As(err, &te), Equals, true)
	c.Assert(te.Kind, Equals, ConnectFailed)
	c.Assert(errors.Is(err, cause), Equals, true)
}

func (s *ErrsSuite) TestLevelNotFoundMessage(c *C) {
	err := NewLevelNotFound([3]int32{2, 2, 2})
	c.Assert(err.Error(), Matches, ".*resolution level.*")
}

func (s *ErrsSuite) TestSizeMismatchMessage(c *C) {
	err := NewSizeMismatch("readBlocksInto coords/offsets", 3, 2)
	c.Assert(err.Error(), Matches, ".*expected 3, got 2.*")
}

func (s *ErrsSuite) TestTypeMismatchMessage(c *C) {
	err := NewTypeMismatch("uint16", "uint8")
	c.Assert(err.Error(), Matches, `.*"uint16".*"uint8".*`)
}

func (s *ErrsSuite) TestShortPayloadMessage(c *C) {
	err := NewShortPayload(100, 12)
	c.Assert(err.Error(), Matches, ".*expected at least 100 bytes, got 12.*")
}
