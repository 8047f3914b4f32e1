/*
	Package errs defines the distinguishable error kinds this client can
	raise, named by meaning rather than by Go type alone, per spec.md §7.
	Each kind is a small struct implementing error; callers recover the kind
	with a type switch or errors.As.  Every constructor wraps the formatted
	message with github.com/pkg/errors so a caller that bubbles the error up
	through several layers still gets a stack trace via errors.Cause or
	"%+v" formatting.
*/
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportKind classifies a TransportError.
type TransportKind int

const (
	ConnectFailed TransportKind = iota
	Timeout
	ProtocolError
	UnexpectedEOF
)

func (k TransportKind) String() string {
	switch k {
	case ConnectFailed:
		return "ConnectFailed"
	case Timeout:
		return "Timeout"
	case ProtocolError:
		return "ProtocolError"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	default:
		return "UnknownTransportKind"
	}
}

// TransportError reports a network, I/O, or protocol-layer failure from C4.
type TransportError struct {
	Kind   TransportKind
	Status int // 0 if no response was received at all
	cause  error
}

func NewTransportError(kind TransportKind, status int, cause error) error {
	e := &TransportError{Kind: kind, Status: status, cause: cause}
	return errors.Wrap(e, "transport error")
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (%s, status %d): %v", e.Kind, e.Status, e.cause)
	}
	return fmt.Sprintf("transport error (%s): %v", e.Kind, e.cause)
}

func (e *TransportError) Unwrap() error { return e.cause }

// MalformedMetadata reports a missing or wrong-shaped field in the server's
// metadata document.  Parsing recovers a zero/empty placeholder for the
// field and proceeds; this error is informational/loggable, not fatal.
type MalformedMetadata struct {
	FieldName string
	Reason    string
}

func NewMalformedMetadata(field, reason string) error {
	return errors.Wrap(&MalformedMetadata{FieldName: field, Reason: reason}, "malformed metadata")
}

func (e *MalformedMetadata) Error() string {
	return fmt.Sprintf("malformed metadata field %q: %s", e.FieldName, e.Reason)
}

// LevelNotFound reports a resolution factor absent from the dataset's
// declared resolutionLevels.
type LevelNotFound struct {
	Resolution [3]int32
}

func NewLevelNotFound(r [3]int32) error {
	return errors.Wrap(&LevelNotFound{Resolution: r}, "level not found")
}

func (e *LevelNotFound) Error() string {
	return fmt.Sprintf("resolution level %v not declared in dataset metadata", e.Resolution)
}

// UnknownTimepoint reports a timepoint selector outside the dataset's
// declared timepointIds.
type UnknownTimepoint struct{ Timepoint int32 }

func NewUnknownTimepoint(t int32) error {
	return errors.Wrap(&UnknownTimepoint{Timepoint: t}, "unknown timepoint")
}

func (e *UnknownTimepoint) Error() string {
	return fmt.Sprintf("timepoint %d is not declared for this dataset", e.Timepoint)
}

// UnknownChannel reports a channel selector >= the dataset's declared count.
type UnknownChannel struct{ Channel int32 }

func NewUnknownChannel(c int32) error {
	return errors.Wrap(&UnknownChannel{Channel: c}, "unknown channel")
}

func (e *UnknownChannel) Error() string {
	return fmt.Sprintf("channel %d is out of range for this dataset", e.Channel)
}

// UnknownAngle reports an angle selector >= the dataset's declared count.
type UnknownAngle struct{ Angle int32 }

func NewUnknownAngle(a int32) error {
	return errors.Wrap(&UnknownAngle{Angle: a}, "unknown angle")
}

func (e *UnknownAngle) Error() string {
	return fmt.Sprintf("angle %d is out of range for this dataset", e.Angle)
}

// InvalidCoord reports a block coordinate outside the block grid at a level.
type InvalidCoord struct {
	Coord      [3]int32
	Resolution [3]int32
}

func NewInvalidCoord(coord, resolution [3]int32) error {
	return errors.Wrap(&InvalidCoord{Coord: coord, Resolution: resolution}, "invalid block coordinate")
}

func (e *InvalidCoord) Error() string {
	return fmt.Sprintf("block coordinate %v is invalid at resolution %v", e.Coord, e.Resolution)
}

// SizeMismatch reports a length or extent inconsistency, e.g. len(coords) !=
// len(offsets), or an image extent inconsistent with its resolution level.
type SizeMismatch struct {
	Context  string
	Expected interface{}
	Got      interface{}
}

func NewSizeMismatch(context string, expected, got interface{}) error {
	return errors.Wrap(&SizeMismatch{Context: context, Expected: expected, Got: got}, "size mismatch")
}

func (e *SizeMismatch) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", e.Context, e.Expected, e.Got)
}

// TypeMismatch reports that an in-memory voxel type differs from the
// dataset's declared voxel type.
type TypeMismatch struct {
	Wanted string
	Actual string
}

func NewTypeMismatch(wanted, actual string) error {
	return errors.Wrap(&TypeMismatch{Wanted: wanted, Actual: actual}, "type mismatch")
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("voxel type mismatch: dataset declares %q, caller supplied %q", e.Wanted, e.Actual)
}

// NoSessionURL reports that the session handshake did not return a
// Location header.
type NoSessionURL struct{}

func NewNoSessionURL() error {
	return errors.Wrap(&NoSessionURL{}, "no session url")
}

func (e *NoSessionURL) Error() string {
	return "session handshake did not return a Location header"
}

// ShortPayload reports that a block codec ran out of bytes decoding a payload.
type ShortPayload struct {
	Expected int
	Got      int
}

func NewShortPayload(expected, got int) error {
	return errors.Wrap(&ShortPayload{Expected: expected, Got: got}, "short payload")
}

func (e *ShortPayload) Error() string {
	return fmt.Sprintf("short block payload: expected at least %d bytes, got %d", e.Expected, e.Got)
}
