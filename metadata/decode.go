/*
	This file decodes the JSON metadata document described in spec.md §6 into
	a DatasetProperties value.  Per spec.md §9's "Deeply nested metadata
	lookups" design note, decoding is organized as a small dispatch over a
	handful of field kinds (basic scalar, scalar triple, ordered sequence,
	optional, resolution-unit, level list) rather than one monolithic
	json.Unmarshal call, so that any single malformed or missing field
	degrades to a zero/empty default plus a logged MalformedMetadata warning
	instead of aborting the whole parse.
*/
package metadata

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/errs"
)

type wireDoc map[string]json.RawMessage

// Decode parses the dataset metadata document fetched from
// {scheme}://{ip}:{port}/datasets/{uuid} (spec.md §6).  A structurally
// invalid JSON body (not even an object) is the only condition that fails
// outright; every missing or wrong-shaped field within an otherwise valid
// object is recovered into a placeholder and recorded in
// DatasetProperties.Warnings.
func Decode(body []byte) (*DatasetProperties, error) {
	var doc wireDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	p := &DatasetProperties{}

	p.UUID = p.decodeRequiredString(doc, "uuid")
	if p.UUID != "" {
		if _, err := uuid.Parse(p.UUID); err != nil {
			p.warn("uuid", "not a well-formed UUID string")
		}
	}
	p.Label = p.decodeRequiredString(doc, "label")
	p.VoxelUnit = p.decodeRequiredString(doc, "voxelUnit")
	p.Compression = p.decodeRequiredString(doc, "compression")
	p.VoxelType = VoxelType(p.decodeRequiredString(doc, "voxelType"))
	if !p.VoxelType.Valid() && p.VoxelType != "" {
		p.warn("voxelType", "not a member of the declared voxel type enumeration")
	}

	p.Dimensions = p.decodeRequiredTriple(doc, "dimensions")
	p.Channels = p.decodeRequiredInt(doc, "channels")
	p.Angles = p.decodeRequiredInt(doc, "angles")

	p.ResolutionLevels = p.decodeResolutionLevels(doc)
	p.Versions = p.decodeRequiredIntSeq(doc, "versions")
	p.TimepointIds = p.decodeRequiredIntSeq(doc, "timepointIds")

	p.Transformations = p.decodeOptionalString(doc, "transformations")
	p.ViewRegistrations = p.decodeOptionalString(doc, "viewRegistrations")
	p.VoxelResolution = p.decodeOptionalTriple(doc, "voxelResolution")
	p.TimepointResolution = p.decodeOptionalResolutionUnit(doc, "timepointResolution")
	p.ChannelResolution = p.decodeOptionalResolutionUnit(doc, "channelResolution")
	p.AngleResolution = p.decodeOptionalResolutionUnit(doc, "angleResolution")

	return p, nil
}

func (p *DatasetProperties) warn(field, reason string) {
	err := errs.NewMalformedMetadata(field, reason)
	p.Warnings = append(p.Warnings, err)
	dvid.Warningf("%v\n", err)
}

// --- scalar kind ---

func (p *DatasetProperties) decodeRequiredString(doc wireDoc, key string) string {
	raw, found := doc[key]
	if !found {
		p.warn(key, "required field missing")
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		p.warn(key, "expected a string")
		return ""
	}
	return s
}

func (p *DatasetProperties) decodeRequiredInt(doc wireDoc, key string) int32 {
	raw, found := doc[key]
	if !found {
		p.warn(key, "required field missing")
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		p.warn(key, "expected a number")
		return 0
	}
	return int32(n)
}

func (p *DatasetProperties) decodeOptionalString(doc wireDoc, key string) Optional[string] {
	raw, found := doc[key]
	if !found {
		return Optional[string]{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		p.warn(key, "expected a string")
		return Optional[string]{}
	}
	return Some(s)
}

// --- scalar triple kind ---

func (p *DatasetProperties) decodeRequiredTriple(doc wireDoc, key string) dvid.Vector3[int32] {
	raw, found := doc[key]
	if !found {
		p.warn(key, "required field missing")
		return dvid.Vector3[int32]{}
	}
	v, ok := decodeTriple(raw)
	if !ok {
		p.warn(key, "expected a 3-element number array")
		return dvid.Vector3[int32]{}
	}
	return v
}

func (p *DatasetProperties) decodeOptionalTriple(doc wireDoc, key string) Optional[dvid.Vector3[float64]] {
	raw, found := doc[key]
	if !found {
		return Optional[dvid.Vector3[float64]]{}
	}
	var nums [3]float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		p.warn(key, "expected a 3-element number array")
		return Optional[dvid.Vector3[float64]]{}
	}
	return Some(dvid.Vector3[float64]{X: nums[0], Y: nums[1], Z: nums[2]})
}

func decodeTriple(raw json.RawMessage) (dvid.Vector3[int32], bool) {
	var nums [3]float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return dvid.Vector3[int32]{}, false
	}
	return dvid.Vector3[int32]{X: int32(nums[0]), Y: int32(nums[1]), Z: int32(nums[2])}, true
}

// --- ordered sequence kind ---

func (p *DatasetProperties) decodeRequiredIntSeq(doc wireDoc, key string) []int32 {
	raw, found := doc[key]
	if !found {
		p.warn(key, "required field missing")
		return nil
	}
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		p.warn(key, "expected an array of numbers")
		return nil
	}
	out := make([]int32, len(nums))
	for i, n := range nums {
		out[i] = int32(n)
	}
	return out
}

// --- resolution-unit kind ---

type wireResolutionUnit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (p *DatasetProperties) decodeOptionalResolutionUnit(doc wireDoc, key string) Optional[dvid.ResolutionUnit] {
	raw, found := doc[key]
	if !found {
		return Optional[dvid.ResolutionUnit]{}
	}
	var w wireResolutionUnit
	if err := json.Unmarshal(raw, &w); err != nil {
		p.warn(key, "expected an object with value/unit fields")
		return Optional[dvid.ResolutionUnit]{}
	}
	return Some(dvid.ResolutionUnit{Value: w.Value, Unit: w.Unit})
}

// --- level list kind ---

func (p *DatasetProperties) decodeResolutionLevels(doc wireDoc) []ResolutionLevel {
	raw, found := doc["resolutionLevels"]
	if !found {
		p.warn("resolutionLevels", "required field missing")
		return nil
	}
	var levels []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &levels); err != nil {
		p.warn("resolutionLevels", "expected an array of objects")
		return nil
	}
	out := make([]ResolutionLevel, 0, len(levels))
	for i, levelDoc := range levels {
		var lvl ResolutionLevel
		if v, ok := levelDoc["resolutions"]; ok {
			if triple, ok := decodeTriple(v); ok {
				lvl.Resolutions = triple
			} else {
				p.warn("resolutionLevels", "level has malformed resolutions triple")
			}
		} else {
			p.warn("resolutionLevels", "level missing resolutions key")
		}
		if v, ok := levelDoc["blockDimensions"]; ok {
			if triple, ok := decodeTriple(v); ok {
				lvl.BlockDimensions = triple
			} else {
				p.warn("resolutionLevels", "level has malformed blockDimensions triple")
			}
		} else {
			p.warn("resolutionLevels", "level missing blockDimensions key")
		}
		_ = i
		out = append(out, lvl)
	}
	return out
}
