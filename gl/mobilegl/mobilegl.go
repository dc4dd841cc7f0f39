// Package mobilegl adapts a golang.org/x/mobile/gl context to the
// renderer's gl.Context interface.
package mobilegl

import (
	mgl "golang.org/x/mobile/gl"

	"github.com/mosaic-engine/mosaic/gl"
)

// glContextLost is returned by GetError on GLES >= 3.2 after a reset.
// x/mobile/gl does not expose the robustness extension directly.
const glContextLost mgl.Enum = 0x0507

// Context implements gl.Context on top of a mobile GL context.
type Context struct {
	gl mgl.Context
}

var _ gl.Context = (*Context)(nil)

func New(ctx mgl.Context) *Context {
	return &Context{gl: ctx}
}

func program(p gl.Program) mgl.Program {
	return mgl.Program{Init: p != 0, Value: uint32(p)}
}

func uniform(loc int32) mgl.Uniform {
	return mgl.Uniform{Value: loc}
}

func attrib(index uint32) mgl.Attrib {
	return mgl.Attrib{Value: uint(index)}
}

func (c *Context) ActiveTexture(unit gl.Enum) { c.gl.ActiveTexture(mgl.Enum(unit)) }

func (c *Context) AttachShader(p gl.Program, s gl.Shader) {
	c.gl.AttachShader(program(p), mgl.Shader{Value: uint32(s)})
}

func (c *Context) BindAttribLocation(p gl.Program, index uint32, name string) {
	c.gl.BindAttribLocation(program(p), attrib(index), name)
}

func (c *Context) BindBuffer(target gl.Enum, b gl.Buffer) {
	c.gl.BindBuffer(mgl.Enum(target), mgl.Buffer{Value: uint32(b)})
}

func (c *Context) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	c.gl.BindFramebuffer(mgl.Enum(target), mgl.Framebuffer{Value: uint32(fb)})
}

func (c *Context) BindTexture(target gl.Enum, t gl.Texture) {
	c.gl.BindTexture(mgl.Enum(target), mgl.Texture{Value: uint32(t)})
}

func (c *Context) BlendFunc(sfactor, dfactor gl.Enum) {
	c.gl.BlendFunc(mgl.Enum(sfactor), mgl.Enum(dfactor))
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.Enum) {
	c.gl.BlendFuncSeparate(mgl.Enum(srcRGB), mgl.Enum(dstRGB), mgl.Enum(srcAlpha), mgl.Enum(dstAlpha))
}

func (c *Context) BufferData(target gl.Enum, data []byte, usage gl.Enum) {
	c.gl.BufferData(mgl.Enum(target), data, mgl.Enum(usage))
}

func (c *Context) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.Enum(c.gl.CheckFramebufferStatus(mgl.Enum(target)))
}

func (c *Context) Clear(mask gl.Enum) { c.gl.Clear(mgl.Enum(mask)) }

func (c *Context) ClearColor(r, g, b, a float32) { c.gl.ClearColor(r, g, b, a) }

func (c *Context) ColorMask(r, g, b, a bool) { c.gl.ColorMask(r, g, b, a) }

func (c *Context) CompileShader(s gl.Shader) { c.gl.CompileShader(mgl.Shader{Value: uint32(s)}) }

func (c *Context) CopyTexImage2D(target gl.Enum, level int, format gl.Enum, x, y, width, height, border int) {
	c.gl.CopyTexImage2D(mgl.Enum(target), level, mgl.Enum(format), x, y, width, height, border)
}

func (c *Context) CreateBuffer() gl.Buffer { return gl.Buffer(c.gl.CreateBuffer().Value) }

func (c *Context) CreateFramebuffer() gl.Framebuffer {
	return gl.Framebuffer(c.gl.CreateFramebuffer().Value)
}

func (c *Context) CreateProgram() gl.Program { return gl.Program(c.gl.CreateProgram().Value) }

func (c *Context) CreateShader(ty gl.Enum) gl.Shader {
	return gl.Shader(c.gl.CreateShader(mgl.Enum(ty)).Value)
}

func (c *Context) CreateTexture() gl.Texture { return gl.Texture(c.gl.CreateTexture().Value) }

func (c *Context) DeleteBuffer(b gl.Buffer) { c.gl.DeleteBuffer(mgl.Buffer{Value: uint32(b)}) }

func (c *Context) DeleteFramebuffer(fb gl.Framebuffer) {
	c.gl.DeleteFramebuffer(mgl.Framebuffer{Value: uint32(fb)})
}

func (c *Context) DeleteProgram(p gl.Program) { c.gl.DeleteProgram(program(p)) }

func (c *Context) DeleteShader(s gl.Shader) { c.gl.DeleteShader(mgl.Shader{Value: uint32(s)}) }

func (c *Context) DeleteTexture(t gl.Texture) { c.gl.DeleteTexture(mgl.Texture{Value: uint32(t)}) }

func (c *Context) Disable(cap gl.Enum) { c.gl.Disable(mgl.Enum(cap)) }

func (c *Context) DrawElements(mode gl.Enum, count int, ty gl.Enum, offset int) {
	c.gl.DrawElements(mgl.Enum(mode), count, mgl.Enum(ty), offset)
}

func (c *Context) Enable(cap gl.Enum) { c.gl.Enable(mgl.Enum(cap)) }

func (c *Context) EnableVertexAttribArray(index uint32) {
	c.gl.EnableVertexAttribArray(attrib(index))
}

func (c *Context) Finish() { c.gl.Finish() }

func (c *Context) Flush() { c.gl.Flush() }

func (c *Context) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	c.gl.FramebufferTexture2D(mgl.Enum(target), mgl.Enum(attachment), mgl.Enum(texTarget), mgl.Texture{Value: uint32(t)}, level)
}

func (c *Context) GetError() gl.Enum { return gl.Enum(c.gl.GetError()) }

func (c *Context) GetGraphicsResetStatus() gl.Enum {
	if c.gl.GetError() == glContextLost {
		return gl.UnknownContextReset
	}
	return gl.NoError
}

func (c *Context) GetProgrami(p gl.Program, pname gl.Enum) int {
	return c.gl.GetProgrami(program(p), mgl.Enum(pname))
}

func (c *Context) GetProgramInfoLog(p gl.Program) string {
	return c.gl.GetProgramInfoLog(program(p))
}

func (c *Context) GetShaderi(s gl.Shader, pname gl.Enum) int {
	return c.gl.GetShaderi(mgl.Shader{Value: uint32(s)}, mgl.Enum(pname))
}

func (c *Context) GetShaderInfoLog(s gl.Shader) string {
	return c.gl.GetShaderInfoLog(mgl.Shader{Value: uint32(s)})
}

func (c *Context) GetShaderPrecisionFormat(shaderType, precisionType gl.Enum) (rangeLow, rangeHigh, precision int) {
	return c.gl.GetShaderPrecisionFormat(mgl.Enum(shaderType), mgl.Enum(precisionType))
}

func (c *Context) GetString(pname gl.Enum) string { return c.gl.GetString(mgl.Enum(pname)) }

func (c *Context) GetUniformLocation(p gl.Program, name string) int32 {
	return c.gl.GetUniformLocation(program(p), name).Value
}

func (c *Context) LineWidth(w float32) { c.gl.LineWidth(w) }

func (c *Context) LinkProgram(p gl.Program) { c.gl.LinkProgram(program(p)) }

func (c *Context) ReadPixels(dst []byte, x, y, width, height int, format, ty gl.Enum) {
	c.gl.ReadPixels(dst, x, y, width, height, mgl.Enum(format), mgl.Enum(ty))
}

func (c *Context) Scissor(x, y, width, height int32) { c.gl.Scissor(x, y, width, height) }

func (c *Context) ShaderSource(s gl.Shader, src string) {
	c.gl.ShaderSource(mgl.Shader{Value: uint32(s)}, src)
}

func (c *Context) TexParameteri(target, pname gl.Enum, param int) {
	c.gl.TexParameteri(mgl.Enum(target), mgl.Enum(pname), param)
}

func (c *Context) Uniform1f(location int32, v float32) { c.gl.Uniform1f(uniform(location), v) }

func (c *Context) Uniform1fv(location int32, values []float32) {
	c.gl.Uniform1fv(uniform(location), values)
}

func (c *Context) Uniform1i(location int32, v int) { c.gl.Uniform1i(uniform(location), v) }

func (c *Context) Uniform2f(location int32, v0, v1 float32) {
	c.gl.Uniform2f(uniform(location), v0, v1)
}

func (c *Context) Uniform2fv(location int32, values []float32) {
	c.gl.Uniform2fv(uniform(location), values)
}

func (c *Context) Uniform3fv(location int32, values []float32) {
	c.gl.Uniform3fv(uniform(location), values)
}

func (c *Context) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	c.gl.Uniform4f(uniform(location), v0, v1, v2, v3)
}

func (c *Context) Uniform4fv(location int32, values []float32) {
	c.gl.Uniform4fv(uniform(location), values)
}

func (c *Context) UniformMatrix3fv(location int32, values []float32) {
	c.gl.UniformMatrix3fv(uniform(location), values)
}

func (c *Context) UniformMatrix4fv(location int32, values []float32) {
	c.gl.UniformMatrix4fv(uniform(location), values)
}

func (c *Context) UseProgram(p gl.Program) { c.gl.UseProgram(program(p)) }

func (c *Context) VertexAttribPointer(index uint32, size int, ty gl.Enum, normalized bool, stride, offset int) {
	c.gl.VertexAttribPointer(attrib(index), size, mgl.Enum(ty), normalized, stride, offset)
}

func (c *Context) Viewport(x, y, width, height int) { c.gl.Viewport(x, y, width, height) }
