package mosaic

import (
	"fmt"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
)

// fakeContext records the commands a test frame issues. Uniform values
// are indexed by uniform name so assertions do not depend on location
// numbering. Shader compilation and linking always succeed.
type fakeContext struct {
	extensions string
	noHighp    bool

	// loseAfterDraws arms a context loss after that many draw calls.
	// Zero means never.
	loseAfterDraws int
	resetStatus    gl.Enum

	handles      uint32
	uniformNames map[int32]string
	uniformLocs  map[string]int32

	draws      []fakeDraw
	readPixels []geom.Rect
	floats     map[string][]float32
	ints       map[string]int
	enabled    map[gl.Enum]bool
	blendFuncs [][2]gl.Enum
	scissor    geom.Rect
	lineWidth  float32

	programsLinked   int
	programsDeleted  int
	buffersDeleted   int
	texturesCreated  int
	texturesDeleted  int
	copyTexCalls     int
	flushes          int
	finishes         int
	boundProgram     gl.Program
	boundFramebuffer gl.Framebuffer
	boundTextures    map[gl.Enum]gl.Texture
	activeUnit       gl.Enum
}

type fakeDraw struct {
	mode    gl.Enum
	count   int
	program gl.Program
}

func newFakeContext(extensions string) *fakeContext {
	return &fakeContext{
		extensions:    extensions,
		uniformNames:  make(map[int32]string),
		uniformLocs:   make(map[string]int32),
		floats:        make(map[string][]float32),
		ints:          make(map[string]int),
		enabled:       make(map[gl.Enum]bool),
		boundTextures: make(map[gl.Enum]gl.Texture),
		activeUnit:    gl.Texture0,
	}
}

func (f *fakeContext) next() uint32 {
	f.handles++
	return f.handles
}

func (f *fakeContext) drawCount(mode gl.Enum) int {
	n := 0
	for _, d := range f.draws {
		if d.mode == mode {
			n++
		}
	}
	return n
}

func (f *fakeContext) setFloats(loc int32, v ...float32) {
	name := f.uniformNames[loc]
	f.floats[name] = append([]float32(nil), v...)
}

func (f *fakeContext) ActiveTexture(unit gl.Enum) { f.activeUnit = unit }
func (f *fakeContext) AttachShader(p gl.Program, s gl.Shader)                {}
func (f *fakeContext) BindAttribLocation(p gl.Program, i uint32, n string)   {}
func (f *fakeContext) BindBuffer(target gl.Enum, b gl.Buffer)                {}
func (f *fakeContext) BindFramebuffer(target gl.Enum, fb gl.Framebuffer)     { f.boundFramebuffer = fb }
func (f *fakeContext) BindTexture(target gl.Enum, t gl.Texture) {
	f.boundTextures[f.activeUnit] = t
}
func (f *fakeContext) BlendFunc(s, d gl.Enum) { f.blendFuncs = append(f.blendFuncs, [2]gl.Enum{s, d}) }
func (f *fakeContext) BlendFuncSeparate(srcRGB, dstRGB, srcA, dstA gl.Enum) {
	f.blendFuncs = append(f.blendFuncs, [2]gl.Enum{srcRGB, dstRGB})
}
func (f *fakeContext) BufferData(target gl.Enum, data []byte, usage gl.Enum) {}
func (f *fakeContext) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.FramebufferComplete
}
func (f *fakeContext) Clear(mask gl.Enum)                {}
func (f *fakeContext) ClearColor(r, g, b, a float32)     {}
func (f *fakeContext) ColorMask(r, g, b, a bool)         {}
func (f *fakeContext) CompileShader(s gl.Shader)         {}
func (f *fakeContext) CopyTexImage2D(target gl.Enum, level int, format gl.Enum, x, y, w, h, border int) {
	f.copyTexCalls++
}
func (f *fakeContext) CreateBuffer() gl.Buffer           { return gl.Buffer(f.next()) }
func (f *fakeContext) CreateFramebuffer() gl.Framebuffer { return gl.Framebuffer(f.next()) }
func (f *fakeContext) CreateProgram() gl.Program         { return gl.Program(f.next()) }
func (f *fakeContext) CreateShader(ty gl.Enum) gl.Shader { return gl.Shader(f.next()) }
func (f *fakeContext) CreateTexture() gl.Texture {
	f.texturesCreated++
	return gl.Texture(f.next())
}
func (f *fakeContext) DeleteBuffer(b gl.Buffer)           { f.buffersDeleted++ }
func (f *fakeContext) DeleteFramebuffer(fb gl.Framebuffer) {}
func (f *fakeContext) DeleteProgram(p gl.Program)         { f.programsDeleted++ }
func (f *fakeContext) DeleteShader(s gl.Shader)           {}
func (f *fakeContext) DeleteTexture(t gl.Texture)         { f.texturesDeleted++ }
func (f *fakeContext) Disable(c gl.Enum)                  { f.enabled[c] = false }
func (f *fakeContext) DrawElements(mode gl.Enum, count int, ty gl.Enum, offset int) {
	f.draws = append(f.draws, fakeDraw{mode: mode, count: count, program: f.boundProgram})
	if f.loseAfterDraws > 0 {
		f.loseAfterDraws--
		if f.loseAfterDraws == 0 {
			f.resetStatus = gl.UnknownContextReset
		}
	}
}
func (f *fakeContext) Enable(c gl.Enum)                  { f.enabled[c] = true }
func (f *fakeContext) EnableVertexAttribArray(i uint32)  {}
func (f *fakeContext) Finish()                            { f.finishes++ }
func (f *fakeContext) Flush()                             { f.flushes++ }
func (f *fakeContext) FramebufferTexture2D(t, a, tt gl.Enum, tex gl.Texture, l int) {}
func (f *fakeContext) GetError() gl.Enum                  { return gl.NoError }
func (f *fakeContext) GetGraphicsResetStatus() gl.Enum    { return f.resetStatus }
func (f *fakeContext) GetProgrami(p gl.Program, pname gl.Enum) int {
	if pname == gl.LinkStatus {
		f.programsLinked++
		return 1
	}
	return 0
}
func (f *fakeContext) GetProgramInfoLog(p gl.Program) string { return "" }
func (f *fakeContext) GetShaderi(s gl.Shader, pname gl.Enum) int {
	if pname == gl.CompileStatus {
		return 1
	}
	return 0
}
func (f *fakeContext) GetShaderInfoLog(s gl.Shader) string { return "" }
func (f *fakeContext) GetShaderPrecisionFormat(shaderType, precisionType gl.Enum) (int, int, int) {
	if f.noHighp {
		return 0, 0, 0
	}
	return -62, 62, 16
}
func (f *fakeContext) GetString(pname gl.Enum) string { return f.extensions }
func (f *fakeContext) GetUniformLocation(p gl.Program, name string) int32 {
	key := fmt.Sprintf("%d/%s", p, name)
	if loc, ok := f.uniformLocs[key]; ok {
		return loc
	}
	loc := int32(len(f.uniformNames) + 1)
	f.uniformLocs[key] = loc
	f.uniformNames[loc] = name
	return loc
}
func (f *fakeContext) LineWidth(w float32)     { f.lineWidth = w }
func (f *fakeContext) LinkProgram(p gl.Program) {}
func (f *fakeContext) ReadPixels(dst []byte, x, y, width, height int, format, ty gl.Enum) {
	f.readPixels = append(f.readPixels, geom.Rect{X: x, Y: y, Width: width, Height: height})
	// Deterministic pattern keyed by GL window coordinates. BGRA reads
	// get the same bytes; the caller is expected to swizzle.
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := (row*width + col) * 4
			dst[i] = uint8(x + col)
			dst[i+1] = uint8(y + row)
			dst[i+2] = 0xAB
			dst[i+3] = 0xFF
		}
	}
}
func (f *fakeContext) Scissor(x, y, w, h int32) {
	f.scissor = geom.Rect{X: int(x), Y: int(y), Width: int(w), Height: int(h)}
}
func (f *fakeContext) ShaderSource(s gl.Shader, src string)        {}
func (f *fakeContext) TexParameteri(target, pname gl.Enum, p int)  {}
func (f *fakeContext) Uniform1f(loc int32, v float32)              { f.setFloats(loc, v) }
func (f *fakeContext) Uniform1fv(loc int32, v []float32)           { f.setFloats(loc, v...) }
func (f *fakeContext) Uniform1i(loc int32, v int)                  { f.ints[f.uniformNames[loc]] = v }
func (f *fakeContext) Uniform2f(loc int32, v0, v1 float32)         { f.setFloats(loc, v0, v1) }
func (f *fakeContext) Uniform2fv(loc int32, v []float32)           { f.setFloats(loc, v...) }
func (f *fakeContext) Uniform3fv(loc int32, v []float32)           { f.setFloats(loc, v...) }
func (f *fakeContext) Uniform4f(loc int32, v0, v1, v2, v3 float32) { f.setFloats(loc, v0, v1, v2, v3) }
func (f *fakeContext) Uniform4fv(loc int32, v []float32)           { f.setFloats(loc, v...) }
func (f *fakeContext) UniformMatrix3fv(loc int32, v []float32)     { f.setFloats(loc, v...) }
func (f *fakeContext) UniformMatrix4fv(loc int32, v []float32)     { f.setFloats(loc, v...) }
func (f *fakeContext) UseProgram(p gl.Program)                      { f.boundProgram = p }
func (f *fakeContext) VertexAttribPointer(i uint32, s int, t gl.Enum, n bool, st, o int) {}
func (f *fakeContext) Viewport(x, y, w, h int) {}

// fakeSurface is an output surface over a fakeContext.
type fakeSurface struct {
	ctx gl.Context

	swaps        int
	partialSwaps []geom.Rect
	latencies    []LatencyInfo
	reshapes     []geom.Size
	binds        int
	ensured      int
	discarded    int
}

func (s *fakeSurface) Context() gl.Context { return s.ctx }
func (s *fakeSurface) BindFramebuffer()    { s.binds++ }
func (s *fakeSurface) Reshape(size geom.Size) {
	s.reshapes = append(s.reshapes, size)
}
func (s *fakeSurface) SwapBuffers(latency LatencyInfo) {
	s.swaps++
	s.latencies = append(s.latencies, latency)
}
func (s *fakeSurface) PostSubBuffer(rect geom.Rect, latency LatencyInfo) {
	s.partialSwaps = append(s.partialSwaps, rect)
	s.latencies = append(s.latencies, latency)
}
func (s *fakeSurface) EnsureBackbuffer()  { s.ensured++ }
func (s *fakeSurface) DiscardBackbuffer() { s.discarded++ }

// fakeResources is an in-memory resource table. Lock counts are
// tracked so tests can assert every lock was released.
type fakeResources struct {
	nextID     quads.ResourceID
	nextTex    gl.Texture
	sizes      map[quads.ResourceID]geom.Size
	created    []quads.ResourceID
	deleted    []quads.ResourceID
	pixels     map[quads.ResourceID][]byte
	readLocks  map[quads.ResourceID]int
	writeLocks map[quads.ResourceID]int
	failRead   map[quads.ResourceID]bool
	fence      Fence
}

func newFakeResources() *fakeResources {
	return &fakeResources{
		nextID:     100,
		nextTex:    1000,
		sizes:      make(map[quads.ResourceID]geom.Size),
		pixels:     make(map[quads.ResourceID][]byte),
		readLocks:  make(map[quads.ResourceID]int),
		writeLocks: make(map[quads.ResourceID]int),
		failRead:   make(map[quads.ResourceID]bool),
	}
}

func (p *fakeResources) LockForRead(id quads.ResourceID) (gl.Texture, error) {
	if p.failRead[id] {
		return 0, fmt.Errorf("resource %d unavailable", id)
	}
	p.readLocks[id]++
	p.nextTex++
	return p.nextTex, nil
}

func (p *fakeResources) UnlockRead(id quads.ResourceID) { p.readLocks[id]-- }

func (p *fakeResources) LockForWrite(id quads.ResourceID) (gl.Texture, error) {
	p.writeLocks[id]++
	p.nextTex++
	return p.nextTex, nil
}

func (p *fakeResources) UnlockWrite(id quads.ResourceID) { p.writeLocks[id]-- }

func (p *fakeResources) CreateResource(size geom.Size, format gl.Enum) quads.ResourceID {
	p.nextID++
	p.sizes[p.nextID] = size
	p.created = append(p.created, p.nextID)
	return p.nextID
}

func (p *fakeResources) DeleteResource(id quads.ResourceID) {
	p.deleted = append(p.deleted, id)
	delete(p.sizes, id)
}

func (p *fakeResources) SetPixels(id quads.ResourceID, pixels []byte, size geom.Size) {
	p.pixels[id] = append([]byte(nil), pixels...)
}

func (p *fakeResources) SetReadLockFence(f Fence) { p.fence = f }

func (p *fakeResources) MaxTextureSize() int { return 4096 }

func (p *fakeResources) BestTextureFormat() gl.Enum { return gl.RGBA }

func (p *fakeResources) unbalancedLocks() []quads.ResourceID {
	var ids []quads.ResourceID
	for id, n := range p.readLocks {
		if n != 0 {
			ids = append(ids, id)
		}
	}
	for id, n := range p.writeLocks {
		if n != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

type fakeClient struct {
	viewport   geom.Rect
	fullDamage int
	policies   []MemoryPolicy
	enforced   []MemoryPolicy
}

func (c *fakeClient) DeviceViewport() geom.Rect { return c.viewport }
func (c *fakeClient) SetFullRootLayerDamage()   { c.fullDamage++ }
func (c *fakeClient) SetMemoryPolicy(policy MemoryPolicy) {
	c.policies = append(c.policies, policy)
}
func (c *fakeClient) EnforceMemoryPolicy(policy MemoryPolicy) {
	c.enforced = append(c.enforced, policy)
}
