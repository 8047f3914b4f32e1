/*
	Package view implements C6: a bound context (server, dataset, channel,
	timepoint, angle, resolution, version) exposing read/write of one block,
	many blocks, an axis-aligned region, or the full image (spec.md §4.6).

	A View is a locator value: it carries no buffered voxel data and owns no
	resource requiring release. It does hold a reference to the dataset's
	properties (immutable, shareable per spec.md §3) and a transport adapter,
	neither of which is buffered state.
*/
package view

import (
	"context"
	"net/http"
	"sort"

	"github.com/fiji-hpc/hpc-datastore-go/codec"
	"github.com/fiji-hpc/hpc-datastore-go/dvid"
	"github.com/fiji-hpc/hpc-datastore-go/errs"
	"github.com/fiji-hpc/hpc-datastore-go/image"
	"github.com/fiji-hpc/hpc-datastore-go/metadata"
	"github.com/fiji-hpc/hpc-datastore-go/planner"
	"github.com/fiji-hpc/hpc-datastore-go/session"
	"github.com/fiji-hpc/hpc-datastore-go/transport"
)

// View binds the locator fields described in spec.md §3/§4.6.
type View[T image.Scalar] struct {
	DatasetURL string
	Channel    int32
	Timepoint  int32
	Angle      int32
	Resolution dvid.Vector3[int32]
	Version    int32

	Props     *metadata.DatasetProperties
	Transport *transport.Adapter
	Limits    dvid.Limits
}

// New builds a View from its locator fields plus the collaborators it needs
// to actually perform I/O.
func New[T image.Scalar](datasetURL string, channel, timepoint, angle int32, resolution dvid.Vector3[int32], version int32, props *metadata.DatasetProperties, adapter *transport.Adapter, limits dvid.Limits) *View[T] {
	return &View[T]{
		DatasetURL: datasetURL,
		Channel:    channel,
		Timepoint:  timepoint,
		Angle:      angle,
		Resolution: resolution,
		Version:    version,
		Props:      props,
		Transport:  adapter,
		Limits:     limits,
	}
}

func (v *View[T]) voxelType() metadata.VoxelType {
	var probe image.Image[T]
	return probe.VoxelType()
}

// validateSelectors checks the resolution level, timepoint, channel, and
// angle selectors against the dataset's declared metadata, and that T
// matches the dataset's declared voxel type. All validation happens before
// any network I/O, per spec.md §7.
func (v *View[T]) validateSelectors() error {
	if v.Props == nil {
		return errs.NewSizeMismatch("view properties", "non-nil DatasetProperties", "nil")
	}
	want := string(v.Props.VoxelType)
	got := string(v.voxelType())
	if want != got {
		return errs.NewTypeMismatch(want, got)
	}
	if _, err := v.Props.BlockDim(v.Resolution); err != nil {
		return err
	}
	if !v.Props.HasTimepoint(v.Timepoint) {
		return errs.NewUnknownTimepoint(v.Timepoint)
	}
	if v.Channel < 0 || v.Channel >= v.Props.Channels {
		return errs.NewUnknownChannel(v.Channel)
	}
	if v.Angle < 0 || v.Angle >= v.Props.Angles {
		return errs.NewUnknownAngle(v.Angle)
	}
	return nil
}

func (v *View[T]) validateCoord(c dvid.Vector3[int32]) error {
	if !v.Props.IsValidBlockCoord(c, v.Resolution) {
		return errs.NewInvalidCoord([3]int32{c.X, c.Y, c.Z}, [3]int32{v.Resolution.X, v.Resolution.Y, v.Resolution.Z})
	}
	return nil
}

func (v *View[T]) resolveSession(ctx context.Context) (string, error) {
	return session.Resolve(ctx, v.Transport, v.DatasetURL, v.Resolution, v.Version)
}

func (v *View[T]) selector() planner.Selector {
	return planner.Selector{Timepoint: v.Timepoint, Channel: v.Channel, Angle: v.Angle}
}

// ReadBlock allocates an image of size blockSize(coord, R) and populates it.
func (v *View[T]) ReadBlock(ctx context.Context, coord dvid.Vector3[int32]) (*image.Image[T], error) {
	if err := v.validateSelectors(); err != nil {
		return nil, err
	}
	if err := v.validateCoord(coord); err != nil {
		return nil, err
	}
	size, err := v.Props.BlockSize(coord, v.Resolution)
	if err != nil {
		return nil, err
	}
	dest := image.New[T](size)
	if err := v.readBlocksInto(ctx, []dvid.Vector3[int32]{coord}, dest, []dvid.Vector3[int32]{{0, 0, 0}}); err != nil {
		return nil, err
	}
	return dest, nil
}

// ReadBlocks reads each block separately, one call per block, returning them
// in input order.
func (v *View[T]) ReadBlocks(ctx context.Context, coords []dvid.Vector3[int32]) ([]*image.Image[T], error) {
	out := make([]*image.Image[T], len(coords))
	for i, c := range coords {
		img, err := v.ReadBlock(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = img
	}
	return out, nil
}

// ReadBlocksInto is the batched read: validates coords/offsets, plans
// batches under the URL length budget, issues each request, and decodes
// each returned payload segment into dest at the matching offset.
func (v *View[T]) ReadBlocksInto(ctx context.Context, coords []dvid.Vector3[int32], dest *image.Image[T], offsets []dvid.Vector3[int32]) error {
	if err := v.validateSelectors(); err != nil {
		return err
	}
	if len(coords) != len(offsets) {
		return errs.NewSizeMismatch("readBlocksInto coords/offsets", len(coords), len(offsets))
	}
	for _, c := range coords {
		if err := v.validateCoord(c); err != nil {
			return err
		}
	}
	return v.readBlocksInto(ctx, coords, dest, offsets)
}

// readBlocksInto is the unvalidated worker shared by ReadBlock/ReadBlocksInto
// (selectors and coords are assumed already checked by the caller).
func (v *View[T]) readBlocksInto(ctx context.Context, coords []dvid.Vector3[int32], dest *image.Image[T], offsets []dvid.Vector3[int32]) error {
	sessionURL, err := v.resolveSession(ctx)
	if err != nil {
		return err
	}
	maxURL := v.Limits.MaxURLLength
	if maxURL <= 0 {
		maxURL = dvid.DefaultLimits().MaxURLLength
	}
	batches := planner.PlanURLs(coords, sessionURL, v.selector(), maxURL)

	elemSize := codec.ElemSize[T]()
	for _, batch := range batches {
		resp, err := v.Transport.Request(ctx, batch.URL, transport.GET, nil, nil)
		if err != nil {
			return err
		}
		body, err := codec.MaybeDecompress(resp.Body, v.Props.Compression)
		if err != nil {
			return err
		}
		pos := int64(0)
		for _, idx := range batch.Indices {
			size, err := v.Props.BlockSize(coords[idx], v.Resolution)
			if err != nil {
				return err
			}
			segLen := codec.PayloadLen(size, elemSize)
			if pos+segLen > int64(len(body)) {
				return errs.NewShortPayload(int(pos+segLen), len(body))
			}
			seg := body[pos : pos+segLen]
			if err := codec.Decode[T](seg, dest, offsets[idx]); err != nil {
				return err
			}
			pos += segLen
		}
	}
	return nil
}

// blocksIntersecting returns, in row-major (x,y,z) order, every block
// coordinate at R whose geometric extent intersects [start,end).
func (v *View[T]) blocksIntersecting(start, end dvid.Vector3[int32]) ([]dvid.Vector3[int32], error) {
	blockDim, err := v.Props.BlockDim(v.Resolution)
	if err != nil {
		return nil, err
	}
	loBlock := dvid.Vector3[int32]{X: start.X / blockDim.X, Y: start.Y / blockDim.Y, Z: start.Z / blockDim.Z}
	hiBlock := dvid.Vector3[int32]{
		X: (end.X - 1) / blockDim.X,
		Y: (end.Y - 1) / blockDim.Y,
		Z: (end.Z - 1) / blockDim.Z,
	}

	var coords []dvid.Vector3[int32]
	for z := loBlock.Z; z <= hiBlock.Z; z++ {
		for y := loBlock.Y; y <= hiBlock.Y; y++ {
			for x := loBlock.X; x <= hiBlock.X; x++ {
				coords = append(coords, dvid.Vector3[int32]{X: x, Y: y, Z: z})
			}
		}
	}
	return coords, nil
}

// ReadRegion reads the axis-aligned region [start,end) into a freshly
// allocated image.
func (v *View[T]) ReadRegion(ctx context.Context, start, end dvid.Vector3[int32]) (*image.Image[T], error) {
	if err := v.validateSelectors(); err != nil {
		return nil, err
	}
	if !start.Less(end) {
		return nil, errs.NewSizeMismatch("readRegion start<end", start, end)
	}
	blockDim, err := v.Props.BlockDim(v.Resolution)
	if err != nil {
		return nil, err
	}
	coords, err := v.blocksIntersecting(start, end)
	if err != nil {
		return nil, err
	}
	dest := image.New[T](end.Sub(start))
	offsets := make([]dvid.Vector3[int32], len(coords))
	for i, c := range coords {
		offsets[i] = c.Mul(blockDim).Sub(start)
	}
	if err := v.readBlocksInto(ctx, coords, dest, offsets); err != nil {
		return nil, err
	}
	return dest, nil
}

// ReadRegionInto reads [start,end) into a temporary image, then copies it
// into dest at offset.
func (v *View[T]) ReadRegionInto(ctx context.Context, start, end dvid.Vector3[int32], dest *image.Image[T], offset dvid.Vector3[int32]) error {
	tmp, err := v.ReadRegion(ctx, start, end)
	if err != nil {
		return err
	}
	extent := tmp.Extent()
	for z := int32(0); z < extent.Z; z++ {
		for y := int32(0); y < extent.Y; y++ {
			for x := int32(0); x < extent.X; x++ {
				c := dvid.Vector3[int32]{X: x, Y: y, Z: z}
				val, _ := tmp.At(c)
				dest.Set(offset.Add(c), val)
			}
		}
	}
	return nil
}

// ReadImage reads the whole image at this View's resolution level.
func (v *View[T]) ReadImage(ctx context.Context) (*image.Image[T], error) {
	if err := v.validateSelectors(); err != nil {
		return nil, err
	}
	return v.ReadRegion(ctx, dvid.Vector3[int32]{}, v.Props.ImageDim(v.Resolution))
}

// allValidBlockCoords enumerates every valid block coordinate at R in
// row-major (x,y,z) order.
func (v *View[T]) allValidBlockCoords() ([]dvid.Vector3[int32], error) {
	count, err := v.Props.BlockCount(v.Resolution)
	if err != nil {
		return nil, err
	}
	var coords []dvid.Vector3[int32]
	for z := int32(0); z < count.Z; z++ {
		for y := int32(0); y < count.Y; y++ {
			for x := int32(0); x < count.X; x++ {
				c := dvid.Vector3[int32]{X: x, Y: y, Z: z}
				if v.Props.IsValidBlockCoord(c, v.Resolution) {
					coords = append(coords, c)
				}
			}
		}
	}
	return coords, nil
}

// WriteBlock encodes and writes a single block at coord from img (whose
// extent must equal blockSize(coord, R)).
func (v *View[T]) WriteBlock(ctx context.Context, coord dvid.Vector3[int32], img *image.Image[T]) error {
	return v.WriteBlocks(ctx, []dvid.Vector3[int32]{coord}, []*image.Image[T]{img})
}

// WriteBlocks validates, batches by the write-batch byte budget, and POSTs
// each batch's concatenated encoded payloads as application/octet-stream.
func (v *View[T]) WriteBlocks(ctx context.Context, coords []dvid.Vector3[int32], blocks []*image.Image[T]) error {
	if err := v.validateSelectors(); err != nil {
		return err
	}
	if len(coords) != len(blocks) {
		return errs.NewSizeMismatch("writeBlocks coords/blocks", len(coords), len(blocks))
	}
	blockDim, err := v.Props.BlockDim(v.Resolution)
	if err != nil {
		return err
	}
	for i, c := range coords {
		if err := v.validateCoord(c); err != nil {
			return err
		}
		wantSize, err := v.Props.BlockSize(c, v.Resolution)
		if err != nil {
			return err
		}
		if !wantSize.Equals(blocks[i].Extent()) {
			return errs.NewSizeMismatch("writeBlocks block extent", wantSize, blocks[i].Extent())
		}
	}

	sessionURL, err := v.resolveSession(ctx)
	if err != nil {
		return err
	}

	elemSize := codec.ElemSize[T]()
	maxPerBatch := planner.MaxBlocksPerWriteBatch(v.writeBatchBytes(), elemSize, blockDim)
	maxURL := v.Limits.MaxURLLength
	if maxURL <= 0 {
		maxURL = dvid.DefaultLimits().MaxURLLength
	}

	byteGroups := planner.GroupByByteBudget(len(coords), maxPerBatch)
	for _, bg := range byteGroups {
		chunkCoords := make([]dvid.Vector3[int32], len(bg.Indices))
		for i, idx := range bg.Indices {
			chunkCoords[i] = coords[idx]
		}

		urlBatches := planner.PlanURLs(chunkCoords, sessionURL, v.selector(), maxURL)
		for _, ub := range urlBatches {
			var body []byte
			for _, localIdx := range ub.Indices {
				pos := bg.Indices[localIdx]
				blk := blocks[pos]
				size, err := v.Props.BlockSize(coords[pos], v.Resolution)
				if err != nil {
					return err
				}
				payload := codec.Encode[T](blk, dvid.Vector3[int32]{}, size)
				body = append(body, payload...)
			}
			body = codec.MaybeCompress(body, v.Props.Compression)
			headers := http.Header{"Content-Type": []string{"application/octet-stream"}}
			resp, err := v.Transport.Request(ctx, ub.URL, transport.POST, body, headers)
			if err != nil {
				return err
			}
			if resp.Status < 200 || resp.Status >= 300 {
				dvid.Warningf("write batch to %s returned non-2xx status %d\n", ub.URL, resp.Status)
			}
		}
	}
	return nil
}

func (v *View[T]) writeBatchBytes() int {
	if v.Limits.WriteBatchBytes > 0 {
		return v.Limits.WriteBatchBytes
	}
	return dvid.DefaultLimits().WriteBatchBytes
}

// WriteImage decomposes img into every valid block coordinate in row-major
// (x,y,z) order and writes them via WriteBlocks in one call, so the
// write-batch byte budget and the URL-length budget together control how
// many POSTs that becomes.
func (v *View[T]) WriteImage(ctx context.Context, img *image.Image[T]) error {
	if err := v.validateSelectors(); err != nil {
		return err
	}
	wantDim := v.Props.ImageDim(v.Resolution)
	if !wantDim.Equals(img.Extent()) {
		return errs.NewSizeMismatch("writeImage extent", wantDim, img.Extent())
	}
	blockDim, err := v.Props.BlockDim(v.Resolution)
	if err != nil {
		return err
	}
	coords, err := v.allValidBlockCoords()
	if err != nil {
		return err
	}
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	blocks := make([]*image.Image[T], len(coords))
	for i, c := range coords {
		size, err := v.Props.BlockSize(c, v.Resolution)
		if err != nil {
			return err
		}
		blk := image.New[T](size)
		lo := c.Mul(blockDim)
		for z := int32(0); z < size.Z; z++ {
			for y := int32(0); y < size.Y; y++ {
				for x := int32(0); x < size.X; x++ {
					val, _ := img.At(lo.Add(dvid.Vector3[int32]{X: x, Y: y, Z: z}))
					blk.Set(dvid.Vector3[int32]{X: x, Y: y, Z: z}, val)
				}
			}
		}
		blocks[i] = blk
	}
	return v.WriteBlocks(ctx, coords, blocks)
}
