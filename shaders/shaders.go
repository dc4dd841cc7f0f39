// Package shaders owns the GPU program variants the renderer draws
// with: one compiled program per {kind, texture-coordinate precision}
// key, created lazily on first use.
package shaders

import (
	"fmt"

	"github.com/mosaic-engine/mosaic/gl"
)

// TexCoordPrecision selects the fragment precision qualifier for
// texture coordinates. High precision is needed once content
// coordinates exceed what mediump can represent exactly.
type TexCoordPrecision int

const (
	PrecisionNA TexCoordPrecision = iota
	PrecisionMedium
	PrecisionHigh
)

// Kind enumerates the program variants.
type Kind int

const (
	KindDebugBorder Kind = iota
	KindSolidColor
	KindSolidColorAA
	KindCheckerboard

	KindTile
	KindTileOpaque
	KindTileAA
	KindTileSwizzle
	KindTileSwizzleOpaque
	KindTileSwizzleAA

	KindRenderPass
	KindRenderPassAA
	KindRenderPassMask
	KindRenderPassMaskAA
	KindRenderPassColorMatrix
	KindRenderPassColorMatrixAA
	KindRenderPassMaskColorMatrix
	KindRenderPassMaskColorMatrixAA

	KindTexture
	KindTextureNonPremultiplied
	KindTextureIOSurface
	KindVideoYUV
	KindVideoStream

	numKinds
)

// NumKinds is the number of program variants per precision level.
const NumKinds = int(numKinds)

// Key identifies one compiled program.
type Key struct {
	Kind      Kind
	Precision TexCoordPrecision
}

// Locations holds the program's uniform locations. A location of -1
// means the program has no such uniform and any store to it is
// skipped.
type Locations struct {
	Matrix               int32
	Quad                 int32
	TexTransform         int32
	VertexTexTransform   int32
	FragmentTexTransform int32
	TexScale             int32
	TexMatrix            int32
	Opacity              int32
	Alpha                int32
	Color                int32
	Frequency            int32
	Edge                 int32
	Sampler              int32
	MaskSampler          int32
	MaskTexCoordScale    int32
	MaskTexCoordOffset   int32
	ColorMatrix          int32
	ColorOffset          int32
	SamplerY             int32
	SamplerU             int32
	SamplerV             int32
	YUVMatrix            int32
	YUVAdjust            int32
}

// Program is one shader variant. The zero handle means not yet
// compiled; Initialize is idempotent.
type Program struct {
	Key    Key
	Locs   Locations
	handle gl.Program
}

func New(key Key) *Program {
	return &Program{Key: key}
}

func (p *Program) Initialized() bool { return p.handle != 0 }

func (p *Program) Handle() gl.Program { return p.handle }

// sources returns the vertex and fragment GLSL for the program's key.
func (p *Program) sources() (vertex, fragment string) {
	prec := p.Key.Precision
	switch p.Key.Kind {
	case KindDebugBorder:
		return vsPos(), fsColor()
	case KindSolidColor:
		return vsQuad(prec), fsColor()
	case KindSolidColorAA:
		return vsQuad(prec), fsColorAA()
	case KindCheckerboard:
		return vsPosTex(prec), fsCheckerboard()
	case KindTile:
		return vsQuadTex(prec), fsTexAlpha(prec, false, false)
	case KindTileOpaque:
		return vsQuadTex(prec), fsTexAlpha(prec, false, true)
	case KindTileAA:
		return vsQuadTex(prec), fsTexClampAlphaAA(prec, false)
	case KindTileSwizzle:
		return vsQuadTex(prec), fsTexAlpha(prec, true, false)
	case KindTileSwizzleOpaque:
		return vsQuadTex(prec), fsTexAlpha(prec, true, true)
	case KindTileSwizzleAA:
		return vsQuadTex(prec), fsTexClampAlphaAA(prec, true)
	case KindRenderPass:
		return vsPosTexTransformSingle(prec), fsRenderPass(prec, false, false, false)
	case KindRenderPassAA:
		return vsQuadTex(prec), fsRenderPass(prec, true, false, false)
	case KindRenderPassMask:
		return vsPosTexTransformSingle(prec), fsRenderPass(prec, false, true, false)
	case KindRenderPassMaskAA:
		return vsQuadTex(prec), fsRenderPass(prec, true, true, false)
	case KindRenderPassColorMatrix:
		return vsPosTexTransformSingle(prec), fsRenderPass(prec, false, false, true)
	case KindRenderPassColorMatrixAA:
		return vsQuadTex(prec), fsRenderPass(prec, true, false, true)
	case KindRenderPassMaskColorMatrix:
		return vsPosTexTransformSingle(prec), fsRenderPass(prec, false, true, true)
	case KindRenderPassMaskColorMatrixAA:
		return vsQuadTex(prec), fsRenderPass(prec, true, true, true)
	case KindTexture:
		return vsPosTexTransform(prec), fsTexVaryingAlpha(prec)
	case KindTextureNonPremultiplied:
		return vsPosTexTransform(prec), fsTexPremultiplyVaryingAlpha(prec)
	case KindTextureIOSurface:
		return vsPosTexTransformSingle(prec), fsTexRect(prec)
	case KindVideoYUV:
		return vsPosTexYUVStretch(prec), fsYUVVideo(prec)
	case KindVideoStream:
		return vsVideoTransform(prec), fsTexExternal(prec)
	}
	panic(fmt.Sprintf("shaders: unknown program kind %d", p.Key.Kind))
}

// Initialize compiles and links the program and resolves its uniform
// locations. Safe to call on an already initialized program.
func (p *Program) Initialize(ctx gl.Context) error {
	if p.handle != 0 {
		return nil
	}
	vertexSrc, fragmentSrc := p.sources()
	vs, err := compileShader(ctx, gl.VertexShader, vertexSrc)
	if err != nil {
		return err
	}
	fs, err := compileShader(ctx, gl.FragmentShader, fragmentSrc)
	if err != nil {
		ctx.DeleteShader(vs)
		return err
	}
	prog := ctx.CreateProgram()
	ctx.AttachShader(prog, vs)
	ctx.AttachShader(prog, fs)
	ctx.BindAttribLocation(prog, PositionAttrib, "a_position")
	ctx.BindAttribLocation(prog, TexCoordAttrib, "a_texCoord")
	ctx.BindAttribLocation(prog, IndexAttrib, "a_index")
	ctx.LinkProgram(prog)
	ctx.DeleteShader(vs)
	ctx.DeleteShader(fs)
	if ctx.GetProgrami(prog, gl.LinkStatus) == 0 {
		log := ctx.GetProgramInfoLog(prog)
		ctx.DeleteProgram(prog)
		return fmt.Errorf("shaders: link failed for kind %d: %s", p.Key.Kind, log)
	}
	p.handle = prog
	p.Locs = queryLocations(ctx, prog)
	return nil
}

// Cleanup releases the GPU program object.
func (p *Program) Cleanup(ctx gl.Context) {
	if p.handle == 0 {
		return
	}
	ctx.DeleteProgram(p.handle)
	p.handle = 0
}

func compileShader(ctx gl.Context, ty gl.Enum, src string) (gl.Shader, error) {
	s := ctx.CreateShader(ty)
	ctx.ShaderSource(s, src)
	ctx.CompileShader(s)
	if ctx.GetShaderi(s, gl.CompileStatus) == 0 {
		log := ctx.GetShaderInfoLog(s)
		ctx.DeleteShader(s)
		return 0, fmt.Errorf("shaders: compile failed: %s", log)
	}
	return s, nil
}

func queryLocations(ctx gl.Context, prog gl.Program) Locations {
	loc := func(name string) int32 { return ctx.GetUniformLocation(prog, name) }
	return Locations{
		Matrix:               loc("matrix"),
		Quad:                 loc("quad"),
		TexTransform:         loc("texTransform"),
		VertexTexTransform:   loc("vertexTexTransform"),
		FragmentTexTransform: loc("fragmentTexTransform"),
		TexScale:             loc("texScale"),
		TexMatrix:            loc("texMatrix"),
		Opacity:              loc("opacity"),
		Alpha:                loc("alpha"),
		Color:                loc("color"),
		Frequency:            loc("frequency"),
		Edge:                 loc("edge"),
		Sampler:              loc("s_texture"),
		MaskSampler:          loc("s_mask"),
		MaskTexCoordScale:    loc("maskTexCoordScale"),
		MaskTexCoordOffset:   loc("maskTexCoordOffset"),
		ColorMatrix:          loc("colorMatrix"),
		ColorOffset:          loc("colorOffset"),
		SamplerY:             loc("y_texture"),
		SamplerU:             loc("u_texture"),
		SamplerV:             loc("v_texture"),
		YUVMatrix:            loc("yuv_matrix"),
		YUVAdjust:            loc("yuv_adj"),
	}
}
