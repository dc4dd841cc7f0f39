package mosaic

import (
	"image"

	"github.com/mosaic-engine/mosaic/filters"
	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
)

// LatencyInfo is an opaque payload the embedder attaches to a frame.
// The renderer never inspects it; it travels to the surface at swap
// time so the embedder can correlate frames with their presentation.
type LatencyInfo any

// OutputSurface is the swappable target the root pass draws into. It
// owns the device context and the backbuffer.
type OutputSurface interface {
	Context() gl.Context
	// BindFramebuffer binds the default backbuffer as the render target.
	BindFramebuffer()
	// Reshape resizes the backbuffer to the given device size.
	Reshape(size geom.Size)
	SwapBuffers(latency LatencyInfo)
	// PostSubBuffer swaps only the given device-space rect. Only called
	// when the device advertises partial swap.
	PostSubBuffer(rect geom.Rect, latency LatencyInfo)
	EnsureBackbuffer()
	DiscardBackbuffer()
}

// Fence tracks GPU progress past a swap. HasPassed stays false until
// the fence's frame has left the double-buffered pipeline.
type Fence interface {
	HasPassed() bool
}

// ResourceProvider owns the texture table shared with the upstream
// layer system. Resource handles are lent to the renderer for the
// duration of one lock scope.
type ResourceProvider interface {
	// LockForRead pins the resource and returns its texture. Unlock
	// with UnlockRead when the draw using it has been issued.
	LockForRead(id quads.ResourceID) (gl.Texture, error)
	UnlockRead(id quads.ResourceID)
	LockForWrite(id quads.ResourceID) (gl.Texture, error)
	UnlockWrite(id quads.ResourceID)

	CreateResource(size geom.Size, format gl.Enum) quads.ResourceID
	DeleteResource(id quads.ResourceID)
	// SetPixels uploads premultiplied RGBA pixel data into the resource.
	SetPixels(id quads.ResourceID, pixels []byte, size geom.Size)

	// SetReadLockFence installs the fence future read locks wait on.
	SetReadLockFence(f Fence)

	MaxTextureSize() int
	BestTextureFormat() gl.Enum
}

// Client is the frame-level driver embedding this renderer.
type Client interface {
	DeviceViewport() geom.Rect
	// SetFullRootLayerDamage requests a full redraw on the next frame,
	// used after the backbuffer is discarded or the device recovers.
	SetFullRootLayerDamage()
	// SetMemoryPolicy installs the memory manager's budget as the
	// standing policy.
	SetMemoryPolicy(policy MemoryPolicy)
	// EnforceMemoryPolicy applies the budget immediately without
	// replacing the standing policy.
	EnforceMemoryPolicy(policy MemoryPolicy)
}

// OffscreenFilterContext evaluates a filter chain against pixels read
// back from the device. A nil context disables filtered effects; the
// affected quads fall back to their unfiltered form.
type OffscreenFilterContext interface {
	Apply(chain filters.Chain, img *image.RGBA) error
}

// PriorityCutoff limits which resource priorities a budget lets the
// embedder retain at a given visibility level.
type PriorityCutoff int

const (
	AllowNothing PriorityCutoff = iota
	AllowRequiredOnly
	AllowNiceToHave
	AllowEverything
)

// MemoryAllocation is the memory manager's budget for this renderer.
type MemoryAllocation struct {
	BytesLimitWhenVisible        int64
	PriorityCutoffWhenVisible    PriorityCutoff
	BytesLimitWhenNotVisible     int64
	PriorityCutoffWhenNotVisible PriorityCutoff
	// HaveBackbufferWhenNotVisible keeps the backbuffer alive across
	// visibility loss, for surfaces that resume cheaply.
	HaveBackbufferWhenNotVisible bool
	// EnforceButDoNotKeepAsPolicy applies the allocation once, without
	// it becoming the standing policy.
	EnforceButDoNotKeepAsPolicy bool
}

// MemoryPolicy is the budget forwarded to the client, stripped of the
// renderer-local backbuffer and enforcement knobs.
type MemoryPolicy struct {
	BytesLimitWhenVisible    int64
	CutoffWhenVisible        PriorityCutoff
	BytesLimitWhenNotVisible int64
	CutoffWhenNotVisible     PriorityCutoff
}
