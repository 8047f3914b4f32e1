/*
	This file adds the optional payload (de)compression named in SPEC_FULL.md:
	the dataset metadata's "compression" field, when it names "snappy", wraps
	the codec's header-and-voxel layout with a Snappy transcoding step.  No
	file in this snapshot imports a Snappy library; klauspost/compress/snappy
	is an out-of-pack choice, consistent with the wider retrieved pack (other
	example repos import both klauspost/compress and golang/snappy).  Absent
	or "none" compression leaves payload bytes untouched, matching spec.md
	§1's "no ... compressed payload decoding beyond what the metadata
	mandates."
*/
package codec

import (
	"github.com/klauspost/compress/snappy"
)

// MaybeDecompress reverses MaybeCompress: if compression == "snappy", raw is
// snappy-decoded before the header/voxel layout is interpreted.  Any other
// value (including "" or "none") returns raw unchanged.
//
// Both directions operate on the full request/response body, not on
// individual block payloads: a read decodes resp.Body once and then slices
// the *uncompressed* result by PayloadLen, so a write must mirror that by
// concatenating every block's encoded payload first and compressing the
// concatenation exactly once before it goes on the wire.
func MaybeDecompress(raw []byte, compression string) ([]byte, error) {
	if compression != "snappy" {
		return raw, nil
	}
	return snappy.Decode(nil, raw)
}

// MaybeCompress snappy-encodes an already-encoded payload (the full
// concatenated body of one request, per the note on MaybeDecompress) when
// compression == "snappy"; otherwise it returns payload unchanged.
func MaybeCompress(payload []byte, compression string) []byte {
	if compression != "snappy" {
		return payload
	}
	return snappy.Encode(nil, payload)
}
