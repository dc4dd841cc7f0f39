// Package mosaic draws ordered render passes of typed quads into a GL
// output surface. The caller hands it one frame's passes at a time;
// the renderer owns shader programs, batch state, and intermediate
// pass textures, while texture resources and the surface itself belong
// to external collaborators.
package mosaic

import (
	"strings"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
	"github.com/mosaic-engine/mosaic/shaders"
)

// Capabilities is what the device negotiation found. Fixed after
// renderer construction.
type Capabilities struct {
	PartialSwap      bool
	TextureRectangle bool
	EGLImageExternal bool
	BGRAReadback     bool
	BGRATextures     bool
	HighpFragment    bool
	MaxTextureSize   int
}

type Renderer struct {
	opts      RendererOptions
	client    Client
	surface   OutputSurface
	resources ResourceProvider
	offscreen OffscreenFilterContext
	cb        *gl.CommandBuffer
	caps      Capabilities

	programs map[shaders.Key]*shaders.Program
	geometry *quadGeometry
	batch    textureQuadCache

	passTextures map[quads.PassID]*passTexture
	rasterStage  *rasterStaging

	frame                drawingFrame
	swapRect             geom.Rect
	offscreenFramebuffer gl.Framebuffer
	lockedTarget         *passTexture

	// Shadowed device state. The device is only touched when a setting
	// actually changes.
	boundProgram   gl.Program
	blendEnabled   bool
	scissorEnabled bool
	scissorRect    geom.Rect

	visible              bool
	backbufferDiscarded  bool
	viewport             geom.Rect
	viewportChanged      bool
	memoryAllocation     MemoryAllocation
	haveMemoryAllocation bool

	pendingFence *swapFence
}

// NewRenderer negotiates device capabilities and creates the shared
// quad geometry plus the always-needed shader programs. The offscreen
// filter context may be nil; filtered effects then silently fall back.
func NewRenderer(client Client, surface OutputSurface, resources ResourceProvider, offscreen OffscreenFilterContext, opts RendererOptions) (*Renderer, error) {
	r := &Renderer{
		opts:         opts,
		client:       client,
		surface:      surface,
		resources:    resources,
		offscreen:    offscreen,
		cb:           gl.NewCommandBuffer(surface.Context()),
		programs:     make(map[shaders.Key]*shaders.Program),
		passTextures: make(map[quads.PassID]*passTexture),
		visible:      true,
	}
	r.caps = negotiateCapabilities(r.cb.Ctx, resources)
	r.geometry = newQuadGeometry(r.cb.Ctx)
	r.offscreenFramebuffer = r.cb.Ctx.CreateFramebuffer()
	r.initializeEagerPrograms()
	if err := r.cb.Status(); err != nil {
		return nil, err
	}
	Logger().Debug("renderer initialized",
		"partialSwap", r.caps.PartialSwap,
		"highpFragment", r.caps.HighpFragment,
		"maxTextureSize", r.caps.MaxTextureSize)
	return r, nil
}

func negotiateCapabilities(ctx gl.Context, resources ResourceProvider) Capabilities {
	exts := " " + ctx.GetString(gl.Extensions) + " "
	has := func(name string) bool { return strings.Contains(exts, " "+name+" ") }
	_, rangeHigh, precision := ctx.GetShaderPrecisionFormat(gl.FragmentShader, gl.HighFloat)
	return Capabilities{
		PartialSwap:      has("GL_NV_post_sub_buffer"),
		TextureRectangle: has("GL_ARB_texture_rectangle"),
		EGLImageExternal: has("GL_OES_EGL_image_external"),
		BGRAReadback:     has("GL_EXT_read_format_bgra"),
		BGRATextures:     has("GL_EXT_texture_format_BGRA8888"),
		HighpFragment:    rangeHigh > 0 || precision > 0,
		MaxTextureSize:   resources.MaxTextureSize(),
	}
}

func (r *Renderer) Capabilities() Capabilities { return r.caps }

// initializeEagerPrograms compiles the variants nearly every frame
// needs, hiding their compile latency from the first draw.
func (r *Renderer) initializeEagerPrograms() {
	for _, kind := range []shaders.Kind{shaders.KindRenderPass, shaders.KindTile, shaders.KindTileOpaque} {
		r.program(kind, shaders.PrecisionMedium)
		if r.caps.HighpFragment {
			r.program(kind, shaders.PrecisionHigh)
		}
	}
}

// program returns the compiled program for the key, compiling on first
// request. On a lost device the returned program may be uninitialized;
// callers skip the draw.
func (r *Renderer) program(kind shaders.Kind, precision shaders.TexCoordPrecision) *shaders.Program {
	if precision == shaders.PrecisionHigh && !r.caps.HighpFragment {
		precision = shaders.PrecisionMedium
	}
	key := shaders.Key{Kind: kind, Precision: precision}
	p := r.programs[key]
	if p == nil {
		p = shaders.New(key)
		r.programs[key] = p
	}
	if !p.Initialized() {
		if err := p.Initialize(r.cb.Ctx); err != nil {
			if !r.cb.DeviceLost() {
				Logger().Error("shader program initialization failed", "kind", int(kind), "err", err)
				if r.opts.DebugChecks {
					panic(err)
				}
			}
		}
	}
	return p
}

// texCoordPrecision picks the fragment precision for content whose
// coordinates reach the given extent.
func (r *Renderer) texCoordPrecision(size geom.Size) shaders.TexCoordPrecision {
	if !r.caps.HighpFragment {
		return shaders.PrecisionMedium
	}
	threshold := r.opts.HighpThresholdMin
	if threshold <= 0 {
		threshold = 2048
	}
	if size.Width > threshold || size.Height > threshold {
		return shaders.PrecisionHigh
	}
	return shaders.PrecisionMedium
}

// Cleanup releases every GPU object the renderer owns. The renderer is
// unusable afterwards.
func (r *Renderer) Cleanup() {
	ctx := r.cb.Ctx
	for _, p := range r.programs {
		p.Cleanup(ctx)
	}
	clear(r.programs)
	r.releasePassTextures()
	if r.rasterStage != nil {
		r.rasterStage.release(r.resources)
		r.rasterStage = nil
	}
	if r.geometry != nil {
		r.geometry.release(ctx)
		r.geometry = nil
	}
	if r.offscreenFramebuffer != 0 {
		ctx.DeleteFramebuffer(r.offscreenFramebuffer)
		r.offscreenFramebuffer = 0
	}
}

// SetVisible tells the renderer whether its output is on screen.
// Going invisible may drop the backbuffer and pass textures, per the
// current memory allocation.
func (r *Renderer) SetVisible(visible bool) {
	if r.visible == visible {
		return
	}
	r.visible = visible
	r.enforceMemoryPolicy()
}

func (r *Renderer) IsVisible() bool { return r.visible }

// Finish blocks until the device has executed every submitted command.
func (r *Renderer) Finish() {
	r.cb.Ctx.Finish()
}

// ViewportChanged marks the device viewport dirty; the next drawn
// frame reshapes the surface to the client's current viewport.
func (r *Renderer) ViewportChanged() {
	r.viewportChanged = true
}

func (r *Renderer) setBlendEnabled(enabled bool) {
	if enabled == r.blendEnabled {
		return
	}
	r.blendEnabled = enabled
	if enabled {
		r.cb.Ctx.Enable(gl.Blend)
	} else {
		r.cb.Ctx.Disable(gl.Blend)
	}
}

func (r *Renderer) useProgram(p gl.Program) {
	if p == r.boundProgram {
		return
	}
	r.boundProgram = p
	r.cb.Ctx.UseProgram(p)
}

func (r *Renderer) setScissorTestRect(rect geom.Rect) {
	if !r.scissorEnabled {
		r.scissorEnabled = true
		r.cb.Ctx.Enable(gl.ScissorTest)
	}
	if rect != r.scissorRect {
		r.scissorRect = rect
		r.cb.Ctx.Scissor(int32(rect.X), int32(rect.Y), int32(rect.Width), int32(rect.Height))
	}
}

func (r *Renderer) disableScissorTest() {
	if !r.scissorEnabled {
		return
	}
	r.scissorEnabled = false
	r.cb.Ctx.Disable(gl.ScissorTest)
}
