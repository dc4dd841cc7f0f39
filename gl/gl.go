// Package gl defines the thin command-submission layer between the
// renderer and a GLES2-class device. Context is the raw device interface;
// CommandBuffer wraps it with a sticky device-loss status that the
// renderer checks uniformly, once per draw, instead of after every call.
package gl

// Object handles. Zero is never a valid handle.
type (
	Buffer      uint32
	Framebuffer uint32
	Program     uint32
	Shader      uint32
	Texture     uint32
)

// Enum is a GLES2 enumerant.
type Enum uint32

const (
	NoError Enum = 0

	// Capabilities.
	Blend       Enum = 0x0BE2
	CullFace    Enum = 0x0B44
	DepthTest   Enum = 0x0B71
	ScissorTest Enum = 0x0C11

	// Blend factors.
	Zero             Enum = 0
	One              Enum = 1
	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303

	ColorBufferBit Enum = 0x4000

	// Texture targets and units.
	Texture2D        Enum = 0x0DE1
	TextureRectangle Enum = 0x84F5
	TextureExternal  Enum = 0x8D65
	Texture0         Enum = 0x84C0
	Texture1         Enum = 0x84C1
	Texture2         Enum = 0x84C2
	Texture3         Enum = 0x84C3

	// Texture parameters.
	TextureMinFilter Enum = 0x2801
	TextureMagFilter Enum = 0x2800
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803
	Nearest          Enum = 0x2600
	Linear           Enum = 0x2601
	ClampToEdge      Enum = 0x812F

	// Pixel formats and types.
	RGB          Enum = 0x1907
	RGBA         Enum = 0x1908
	BGRA         Enum = 0x80E1
	UnsignedByte Enum = 0x1401
	Float        Enum = 0x1406

	// Framebuffers.
	Framebuffer2D       Enum = 0x8D40
	ColorAttachment0    Enum = 0x8CE0
	FramebufferComplete Enum = 0x8CD5

	// Buffers.
	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	StaticDraw         Enum = 0x88E4

	// Draw modes and index types.
	Triangles     Enum = 0x0004
	LineLoop      Enum = 0x0002
	UnsignedShort Enum = 0x1403

	// Shaders.
	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
	CompileStatus  Enum = 0x8B81
	LinkStatus     Enum = 0x8B82

	// Precision queries.
	HighFloat   Enum = 0x8DF2
	MediumFloat Enum = 0x8DF1

	// Strings.
	Extensions Enum = 0x1F03

	// Reset statuses (robustness).
	GuiltyContextReset   Enum = 0x8253
	InnocentContextReset Enum = 0x8254
	UnknownContextReset  Enum = 0x8255
)

// Context is the subset of a GLES2 context the renderer issues. All
// commands are fire-and-forget; completion is ordered but asynchronous.
// Implementations: mobilegl (real device), test fakes.
type Context interface {
	ActiveTexture(unit Enum)
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, index uint32, name string)
	BindBuffer(target Enum, b Buffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	BindTexture(target Enum, t Texture)
	BlendFunc(sfactor, dfactor Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BufferData(target Enum, data []byte, usage Enum)
	CheckFramebufferStatus(target Enum) Enum
	Clear(mask Enum)
	ClearColor(r, g, b, a float32)
	ColorMask(r, g, b, a bool)
	CompileShader(s Shader)
	CopyTexImage2D(target Enum, level int, format Enum, x, y, width, height, border int)
	CreateBuffer() Buffer
	CreateFramebuffer() Framebuffer
	CreateProgram() Program
	CreateShader(ty Enum) Shader
	CreateTexture() Texture
	DeleteBuffer(b Buffer)
	DeleteFramebuffer(fb Framebuffer)
	DeleteProgram(p Program)
	DeleteShader(s Shader)
	DeleteTexture(t Texture)
	Disable(cap Enum)
	DrawElements(mode Enum, count int, ty Enum, offset int)
	Enable(cap Enum)
	EnableVertexAttribArray(index uint32)
	Finish()
	Flush()
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	GetError() Enum
	GetGraphicsResetStatus() Enum
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	GetShaderPrecisionFormat(shaderType, precisionType Enum) (rangeLow, rangeHigh, precision int)
	GetString(pname Enum) string
	GetUniformLocation(p Program, name string) int32
	LineWidth(w float32)
	LinkProgram(p Program)
	ReadPixels(dst []byte, x, y, width, height int, format, ty Enum)
	Scissor(x, y, width, height int32)
	ShaderSource(s Shader, src string)
	TexParameteri(target, pname Enum, param int)
	Uniform1f(location int32, v float32)
	Uniform1fv(location int32, values []float32)
	Uniform1i(location int32, v int)
	Uniform2f(location int32, v0, v1 float32)
	Uniform2fv(location int32, values []float32)
	Uniform3fv(location int32, values []float32)
	Uniform4f(location int32, v0, v1, v2, v3 float32)
	Uniform4fv(location int32, values []float32)
	UniformMatrix3fv(location int32, values []float32)
	UniformMatrix4fv(location int32, values []float32)
	UseProgram(p Program)
	VertexAttribPointer(index uint32, size int, ty Enum, normalized bool, stride, offset int)
	Viewport(x, y, width, height int)
}
