/*
	Package hpcds is the module root: the IP/scheme derivation helper
	described in spec.md §6 ("URL scheme derivation").  original_source's
	samples/common.hpp hardcodes a single SERVER_IP constant rather than
	deriving a URL from caller-supplied parts, so this function has no
	direct in-pack analogue; it implements spec.md §6's scheme rule
	directly.
*/
package hpcds

import (
	"strconv"
	"strings"
)

// BuildDatasetURL derives the dataset URL "{scheme}{ip}:{port}/datasets/{uuid}"
// from a caller-supplied host string, port, and dataset UUID. If ip already
// carries an "http://" prefix it is used literally; otherwise "https://" is
// prefixed, per spec.md §6.
func BuildDatasetURL(ip string, port int, uuid string) string {
	scheme := "https://"
	if strings.HasPrefix(ip, "http://") {
		scheme = ""
	}
	return scheme + ip + ":" + strconv.Itoa(port) + "/datasets/" + uuid
}
