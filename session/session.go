/*
	Package session implements C5: obtaining the redirected session URL for
	a given (resolution, version) read-write endpoint (spec.md §4.5).
*/
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/errs"
	"github.com/fiji-hpc/hpc-datastore-go/transport"
)

// Resolve builds "{datasetUrl}/{Rx}/{Ry}/{Rz}/{version}/read-write", issues
// a GET, and returns the trimmed Location header as the session URL.
// Any status other than 307 is logged as a warning but the Location header,
// if present, is still returned; its absence is NoSessionURL regardless of
// status.
func Resolve(ctx context.Context, adapter *transport.Adapter, datasetURL string, r dvid.Vector3[int32], version int32) (string, error) {
	handshakeURL := fmt.Sprintf("%s/%d/%d/%d/%d/read-write", datasetURL, r.X, r.Y, r.Z, version)

	resp, err := adapter.Request(ctx, handshakeURL, transport.GET, nil, nil)
	if err != nil {
		return "", err
	}

	if resp.Status != 307 {
		dvid.Warningf("session handshake to %s returned status %d, expected 307\n", handshakeURL, resp.Status)
	}

	location := resp.Headers.Get("Location")
	if location == "" {
		return "", errs.NewNoSessionURL()
	}
	return strings.TrimSuffix(location, "/"), nil
}
