package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/image"
	"github.com/fiji-hpc/hpc-datastore-go/resample"
	"github.com/fiji-hpc/hpc-datastore-go/transport"
)

func Test(t *testing.T) { TestingT(t) }

type ClientSuite struct{}

var _ = Suite(&ClientSuite{})

const metadataDoc = `{
	"uuid": "11111111-1111-1111-1111-111111111111",
	"label": "pyramid-sample",
	"voxelUnit": "micrometer",
	"compression": "none",
	"voxelType": "uint16",
	"dimensions": [128, 64, 32],
	"channels": 1,
	"angles": 1,
	"versions": [0],
	"timepointIds": [0],
	"resolutionLevels": [
		{"resolutions": [1,1,1], "blockDimensions": [128,64,32]},
		{"resolutions": [2,2,2], "blockDimensions": [64,32,16]}
	]
}`

// fakePyramidServer emulates the metadata endpoint plus a one-block-per-level
// datastore, enough to exercise WriteWithPyramids end to end (scenario S6).
type fakePyramidServer struct {
	mu     sync.Mutex
	blocks map[string][]byte
	srv    *httptest.Server
}

func newFakePyramidServer() *fakePyramidServer {
	fp := &fakePyramidServer{blocks: make(map[string][]byte)}
	fp.srv = httptest.NewServer(http.HandlerFunc(fp.handle))
	return fp
}

func (fp *fakePyramidServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/dataset" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(metadataDoc))
		return
	}
	if strings.HasSuffix(r.URL.Path, "/read-write") {
		session := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/dataset"), "/read-write")
		w.Header().Set("Location", fp.srv.URL+"/session"+session)
		w.WriteHeader(http.StatusTemporaryRedirect)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/session")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 4 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key := "/" + strings.Join(parts[:4], "/")
	suffix := "/" + strings.Join(parts[4:], "/")

	switch r.Method {
	case http.MethodGet:
		fp.mu.Lock()
		body := fp.blocks[key+suffix]
		fp.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	case http.MethodPost:
		buf := make([]byte, r.ContentLength)
		io.ReadFull(r.Body, buf)
		fp.mu.Lock()
		fp.blocks[key+suffix] = append([]byte(nil), buf...)
		fp.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (fp *fakePyramidServer) client() *Client[uint16] {
	return &Client[uint16]{
		DatasetURL: fp.srv.URL + "/dataset",
		Transport:  transport.New(nil),
		Limits:     dvid.DefaultLimits(),
	}
}

func (s *ClientSuite) TestPropertiesFetchesFresh(c *C) {
	fp := newFakePyramidServer()
	defer fp.srv.Close()

	cl := fp.client()
	props, err := cl.Properties(context.Background())
	c.Assert(err, IsNil)
	c.Assert(props.Label, Equals, "pyramid-sample")
	c.Assert(props.Dimensions, Equals, dvid.Vector3[int32]{X: 128, Y: 64, Z: 32})
}

func (s *ClientSuite) TestDescribePropertiesFormatsSummary(c *C) {
	fp := newFakePyramidServer()
	defer fp.srv.Close()

	cl := fp.client()
	summary, err := cl.DescribeProperties(context.Background())
	c.Assert(err, IsNil)
	c.Assert(strings.Contains(summary, "pyramid-sample"), Equals, true)
	c.Assert(strings.Contains(summary, "uint16"), Equals, true)
}

// TestWriteWithPyramids covers scenario S6: writing a [128,64,32] uint16
// image produces a readable [64,32,16] image at level (2,2,2) equal to the
// nearest-neighbour downsample of the source.
func (s *ClientSuite) TestWriteWithPyramids(c *C) {
	fp := newFakePyramidServer()
	defer fp.srv.Close()

	cl := fp.client()

	extent := dvid.Vector3[int32]{X: 128, Y: 64, Z: 32}
	src := image.New[uint16](extent)
	for i := range src.Data() {
		src.Data()[i] = uint16(i % 65535)
	}

	ctx := context.Background()
	err := cl.WriteWithPyramids(ctx, src, 0, 0, 0, 0, resample.NearestNeighbour, nil)
	c.Assert(err, IsNil)

	base, err := cl.ReadImage(ctx, 0, 0, 0, dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}, 0, nil)
	c.Assert(err, IsNil)
	c.Assert(base.Data(), DeepEquals, src.Data())

	downsampled, err := cl.ReadImage(ctx, 0, 0, 0, dvid.Vector3[int32]{X: 2, Y: 2, Z: 2}, 0, nil)
	c.Assert(err, IsNil)

	want := resample.NearestNeighbourResample[uint16](src, dvid.Vector3[int32]{X: 64, Y: 32, Z: 16})
	c.Assert(downsampled.Data(), DeepEquals, want.Data())
}

func (s *ClientSuite) TestNewWithTOMLLimitsOverridesDefaults(c *C) {
	fp := newFakePyramidServer()
	defer fp.srv.Close()

	doc := "max_url_length = 512\nwrite_batch_bytes = 1024\n"
	cl, err := NewWithTOMLLimits[uint16](strings.TrimPrefix(fp.srv.URL, "http://"), 0, "unused", nil, doc)
	c.Assert(err, IsNil)
	c.Assert(cl.Limits, Equals, dvid.Limits{MaxURLLength: 512, WriteBatchBytes: 1024})
}

func (s *ClientSuite) TestNewWithTOMLLimitsRejectsMalformedDoc(c *C) {
	_, err := NewWithTOMLLimits[uint16]("example.org", 8080, "unused", nil, "not = valid = toml")
	c.Assert(err, NotNil)
}

func (s *ClientSuite) TestGetViewUsesCachedPropertiesWithoutRefetch(c *C) {
	fp := newFakePyramidServer()
	defer fp.srv.Close()

	cl := fp.client()
	props, err := cl.Properties(context.Background())
	c.Assert(err, IsNil)

	// Break the metadata endpoint to prove GetView doesn't hit it again
	// when a cached value is supplied.
	fp.srv.Close()

	v, err := cl.GetView(context.Background(), 0, 0, 0, dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}, 0, props)
	c.Assert(err, IsNil)
	c.Assert(v.Props, Equals, props)
}
