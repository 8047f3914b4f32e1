/*
	Package client implements C7: the multi-image entry point a caller
	constructs once per dataset. It owns the transport adapter and the
	tunable limits, resolves DatasetProperties (fresh or caller-supplied),
	and hands out Views bound to a selector tuple.
*/
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	hpcds "github.com/fiji-hpc/hpc-datastore-go"
	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/image"
	"github.com/fiji-hpc/hpc-datastore-go/metadata"
	"github.com/fiji-hpc/hpc-datastore-go/resample"
	"github.com/fiji-hpc/hpc-datastore-go/transport"
	"github.com/fiji-hpc/hpc-datastore-go/view"
)

// Client is the dataset-level entry point: it knows how to reach one
// dataset's metadata endpoint and how to mint Views against it.
type Client[T image.Scalar] struct {
	DatasetURL string
	Transport  *transport.Adapter
	Limits     dvid.Limits
}

// Option configures a Client at construction time.
type Option func(*clientConfig)

type clientConfig struct {
	limits dvid.Limits
}

// WithLimits overrides the process-wide tunables a Client hands to every
// View it mints, bypassing dvid.DefaultLimits().
func WithLimits(limits dvid.Limits) Option {
	return func(cfg *clientConfig) { cfg.limits = limits }
}

// WithLimitsFromTOML decodes tomlDoc via dvid.LoadLimits and uses the
// result, letting an embedding application override the URL-length budget
// and write-batch byte target from a config file instead of compiled-in
// defaults. A decode error is ignored and the limits configured so far stay
// in effect; NewWithTOMLLimits is the constructor that returns the error.
func WithLimitsFromTOML(tomlDoc string) Option {
	return func(cfg *clientConfig) {
		if limits, err := dvid.LoadLimits(tomlDoc); err == nil {
			cfg.limits = limits
		}
	}
}

// New builds a Client for the dataset identified by (ip, port, uuid),
// deriving the dataset URL via hpcds.BuildDatasetURL. A nil httpClient
// gets transport's own default. Limits default to dvid.DefaultLimits()
// unless overridden by an Option such as WithLimits or WithLimitsFromTOML.
func New[T image.Scalar](ip string, port int, datasetUUID string, httpClient *http.Client, opts ...Option) *Client[T] {
	cfg := clientConfig{limits: dvid.DefaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client[T]{
		DatasetURL: hpcds.BuildDatasetURL(ip, port, datasetUUID),
		Transport:  transport.New(httpClient),
		Limits:     cfg.limits,
	}
}

// NewWithTOMLLimits is like New, but loads Limits from a TOML document
// (e.g. read from a config file) up front and surfaces a decode error to
// the caller instead of silently falling back to the defaults.
func NewWithTOMLLimits[T image.Scalar](ip string, port int, datasetUUID string, httpClient *http.Client, tomlDoc string) (*Client[T], error) {
	limits, err := dvid.LoadLimits(tomlDoc)
	if err != nil {
		return nil, err
	}
	return New[T](ip, port, datasetUUID, httpClient, WithLimits(limits)), nil
}

// Properties fetches the dataset's metadata document fresh from the server
// and decodes it. Per spec.md §4.7, this is always a fresh fetch; callers
// wanting to reuse a prior result should hold onto it themselves and pass
// it to GetView/the full-selector methods below instead of calling this
// again.
func (c *Client[T]) Properties(ctx context.Context) (*metadata.DatasetProperties, error) {
	resp, err := c.Transport.Request(ctx, c.DatasetURL, transport.GET, nil, nil)
	if err != nil {
		return nil, err
	}
	return metadata.Decode(resp.Body)
}

// resolveProps returns cached if non-nil, else fetches fresh properties.
func (c *Client[T]) resolveProps(ctx context.Context, cached *metadata.DatasetProperties) (*metadata.DatasetProperties, error) {
	if cached != nil {
		return cached, nil
	}
	return c.Properties(ctx)
}

// GetView returns a View bound to the given selector tuple. cached may be
// nil, in which case properties are fetched fresh.
func (c *Client[T]) GetView(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, cached *metadata.DatasetProperties) (*view.View[T], error) {
	props, err := c.resolveProps(ctx, cached)
	if err != nil {
		return nil, err
	}
	return view.New[T](c.DatasetURL, channel, timepoint, angle, resolution, version, props, c.Transport, c.Limits), nil
}

// ReadBlock reads one block under the given full selector tuple.
func (c *Client[T]) ReadBlock(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, coord dvid.Vector3[int32], cached *metadata.DatasetProperties) (*image.Image[T], error) {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return nil, err
	}
	return v.ReadBlock(ctx, coord)
}

// ReadBlocks reads a list of blocks under the given full selector tuple.
func (c *Client[T]) ReadBlocks(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, coords []dvid.Vector3[int32], cached *metadata.DatasetProperties) ([]*image.Image[T], error) {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return nil, err
	}
	return v.ReadBlocks(ctx, coords)
}

// ReadBlocksInto performs a batched read directly into dest.
func (c *Client[T]) ReadBlocksInto(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, coords []dvid.Vector3[int32], dest *image.Image[T], offsets []dvid.Vector3[int32], cached *metadata.DatasetProperties) error {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return err
	}
	return v.ReadBlocksInto(ctx, coords, dest, offsets)
}

// ReadRegion reads an axis-aligned region under the given full selector tuple.
func (c *Client[T]) ReadRegion(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, start, end dvid.Vector3[int32], cached *metadata.DatasetProperties) (*image.Image[T], error) {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return nil, err
	}
	return v.ReadRegion(ctx, start, end)
}

// ReadRegionInto reads an axis-aligned region into dest at offset.
func (c *Client[T]) ReadRegionInto(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, start, end dvid.Vector3[int32], dest *image.Image[T], offset dvid.Vector3[int32], cached *metadata.DatasetProperties) error {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return err
	}
	return v.ReadRegionInto(ctx, start, end, dest, offset)
}

// ReadImage reads the whole image at the given selector tuple.
func (c *Client[T]) ReadImage(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, cached *metadata.DatasetProperties) (*image.Image[T], error) {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return nil, err
	}
	return v.ReadImage(ctx)
}

// WriteBlock writes one block under the given full selector tuple.
func (c *Client[T]) WriteBlock(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, coord dvid.Vector3[int32], img *image.Image[T], cached *metadata.DatasetProperties) error {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return err
	}
	return v.WriteBlock(ctx, coord, img)
}

// WriteBlocks writes a list of blocks under the given full selector tuple.
func (c *Client[T]) WriteBlocks(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, coords []dvid.Vector3[int32], blocks []*image.Image[T], cached *metadata.DatasetProperties) error {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return err
	}
	return v.WriteBlocks(ctx, coords, blocks)
}

// WriteImage writes the whole image under the given full selector tuple.
func (c *Client[T]) WriteImage(ctx context.Context, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, img *image.Image[T], cached *metadata.DatasetProperties) error {
	v, err := c.GetView(ctx, channel, timepoint, angle, resolution, version, cached)
	if err != nil {
		return err
	}
	return v.WriteImage(ctx, img)
}

// WriteWithPyramids writes img at the base (1,1,1) level, then for every
// other declared resolution resamples img to that level's image extent
// using sampler (resample.Default[T]{} if nil) and writes it too, per
// spec.md §4.7. Level upload order is unspecified; each level is
// independent.
func (c *Client[T]) WriteWithPyramids(ctx context.Context, img *image.Image[T], channel, timepoint, angle, version int32, mode resample.SamplingMode, sampler resample.Sampler[T]) error {
	if sampler == nil {
		sampler = resample.Default[T]{}
	}
	props, err := c.Properties(ctx)
	if err != nil {
		return err
	}

	base := dvid.Vector3[int32]{X: 1, Y: 1, Z: 1}
	if err := c.WriteImage(ctx, channel, timepoint, angle, base, version, img, props); err != nil {
		return err
	}

	for _, r := range props.AllResolutions() {
		if r.Equals(base) {
			continue
		}
		dstDim := props.ImageDim(r)
		resampled, err := sampler.Resample(img, dstDim, mode)
		if err != nil {
			return err
		}
		if err := c.WriteImage(ctx, channel, timepoint, angle, r, version, resampled, props); err != nil {
			return err
		}
	}
	return nil
}

// DescribeProperties fetches properties fresh and renders a human-readable
// multi-line summary: UUID and label, voxel type, dimensions, channels,
// angles, compression, resolution levels, and the number of metadata
// warnings when there are any.
func (c *Client[T]) DescribeProperties(ctx context.Context) (string, error) {
	props, err := c.Properties(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "dataset %s (%s)\n", props.UUID, props.Label)
	fmt.Fprintf(&b, "  voxel type: %s\n", props.VoxelType)
	fmt.Fprintf(&b, "  dimensions: %d x %d x %d\n", props.Dimensions.X, props.Dimensions.Y, props.Dimensions.Z)
	fmt.Fprintf(&b, "  channels: %d, angles: %d\n", props.Channels, props.Angles)
	fmt.Fprintf(&b, "  compression: %s\n", props.Compression)
	fmt.Fprintf(&b, "  resolution levels:\n")
	for _, lvl := range props.ResolutionLevels {
		fmt.Fprintf(&b, "    %dx%dx%d -> block %dx%dx%d\n",
			lvl.Resolutions.X, lvl.Resolutions.Y, lvl.Resolutions.Z,
			lvl.BlockDimensions.X, lvl.BlockDimensions.Y, lvl.BlockDimensions.Z)
	}
	if len(props.Warnings) > 0 {
		fmt.Fprintf(&b, "  warnings: %d\n", len(props.Warnings))
	}
	return b.String(), nil
}
