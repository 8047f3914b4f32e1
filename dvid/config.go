/*
	This file supports generic configuration loading.  Per-process tunables
	(URL length budget, write-batch byte target) are process-wide defaults
	that an embedding application may override via a TOML document, mirroring
	how the teacher's storage backend is configured via a TOML-decoded
	Backend struct rather than compiled-in constants.
*/
package dvid

import (
	"github.com/BurntSushi/toml"
)

// Limits holds the process-wide tunables named in spec.md §6 and §9:
// the URL-length budget the request planner packs batches against, and the
// byte-size target a write batch aims to stay under.
type Limits struct {
	MaxURLLength    int `toml:"max_url_length"`
	WriteBatchBytes int `toml:"write_batch_bytes"`
}

// DefaultLimits returns the documented defaults: a 2048-byte URL budget and
// a 128 MiB (134217728 byte) write-batch target.
func DefaultLimits() Limits {
	return Limits{
		MaxURLLength:    2048,
		WriteBatchBytes: 134217728,
	}
}

// LoadLimits decodes a TOML document (e.g. read from a config file) into
// Limits, filling in any field left zero with the documented default.
func LoadLimits(tomlDoc string) (Limits, error) {
	limits := DefaultLimits()
	if tomlDoc == "" {
		return limits, nil
	}
	var parsed Limits
	if _, err := toml.Decode(tomlDoc, &parsed); err != nil {
		return Limits{}, err
	}
	if parsed.MaxURLLength > 0 {
		limits.MaxURLLength = parsed.MaxURLLength
	}
	if parsed.WriteBatchBytes > 0 {
		limits.WriteBatchBytes = parsed.WriteBatchBytes
	}
	return limits, nil
}
