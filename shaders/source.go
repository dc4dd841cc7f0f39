package shaders

import "fmt"

// Vertex attribute indices, bound before linking so every program
// shares one vertex layout.
const (
	PositionAttrib uint32 = 0
	TexCoordAttrib uint32 = 1
	IndexAttrib    uint32 = 2
)

// MaxBatchQuads is the number of quads one batched texture draw can
// carry. The vertex buffer holds this many unit quads and the batched
// shaders size their uniform arrays to match.
const MaxBatchQuads = 8

func (p TexCoordPrecision) glsl() string {
	if p == PrecisionHigh {
		return "highp"
	}
	return "mediump"
}

// vsPosTex transforms a unit quad and forwards interpolated texture
// coordinates.
func vsPosTex(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute vec4 a_position;
attribute %[1]s vec2 a_texCoord;
uniform mat4 matrix;
varying %[1]s vec2 v_texCoord;
void main() {
  gl_Position = matrix * a_position;
  v_texCoord = a_texCoord;
}
`, p.glsl())
}

// vsPosTexYUVStretch scales texture coordinates to the visible portion
// of the video planes.
func vsPosTexYUVStretch(p TexCoordPrecision) string {
	return fmt.Sprintf(`precision mediump float;
attribute vec4 a_position;
attribute %[1]s vec2 a_texCoord;
uniform mat4 matrix;
uniform %[1]s vec2 texScale;
varying %[1]s vec2 v_texCoord;
void main() {
  gl_Position = matrix * a_position;
  v_texCoord = a_texCoord * texScale;
}
`, p.glsl())
}

// vsPos transforms positions only.
func vsPos() string {
	return `attribute vec4 a_position;
uniform mat4 matrix;
void main() {
  gl_Position = matrix * a_position;
}
`
}

// vsPosTexTransform is the batched texture vertex shader. a_index
// selects the quad (four vertices per quad) within the uniform arrays.
func vsPosTexTransform(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute vec4 a_position;
attribute %[1]s vec2 a_texCoord;
attribute float a_index;
uniform mat4 matrix[%[2]d];
uniform %[1]s vec4 texTransform[%[2]d];
uniform float opacity[%[3]d];
varying %[1]s vec2 v_texCoord;
varying float v_alpha;
void main() {
  int quad_index = int(a_index * 0.25);
  gl_Position = matrix[quad_index] * a_position;
  %[1]s vec4 texTrans = texTransform[quad_index];
  v_texCoord = a_texCoord * texTrans.zw + texTrans.xy;
  v_alpha = opacity[int(a_index)];
}
`, p.glsl(), MaxBatchQuads, MaxBatchQuads*4)
}

// vsPosTexTransformSingle is the unbatched variant used when the
// texture transform is set per draw rather than per batch entry.
func vsPosTexTransformSingle(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute vec4 a_position;
attribute %[1]s vec2 a_texCoord;
uniform mat4 matrix;
uniform %[1]s vec4 texTransform;
varying %[1]s vec2 v_texCoord;
void main() {
  gl_Position = matrix * a_position;
  v_texCoord = a_texCoord * texTransform.zw + texTransform.xy;
}
`, p.glsl())
}

// vsVideoTransform applies the stream-video texture matrix supplied by
// the external texture source.
func vsVideoTransform(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute vec4 a_position;
attribute %[1]s vec2 a_texCoord;
uniform mat4 matrix;
uniform %[1]s mat4 texMatrix;
varying %[1]s vec2 v_texCoord;
void main() {
  gl_Position = matrix * a_position;
  v_texCoord = vec2(texMatrix * vec4(a_texCoord.x, 1.0 - a_texCoord.y, 0.0, 1.0));
}
`, p.glsl())
}

// vsQuad positions vertices by looking up per-draw device-space quad
// corners, used by antialiased draws whose geometry is inflated on the
// CPU.
func vsQuad(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute %[1]s vec4 a_position;
attribute float a_index;
uniform mat4 matrix;
uniform %[1]s vec2 quad[4];
void main() {
  vec2 pos = quad[int(a_index)];
  gl_Position = matrix * vec4(pos, a_position.z, a_position.w);
}
`, p.glsl())
}

// vsQuadTex additionally derives texture coordinates from the quad
// corner positions through a scale/offset transform.
func vsQuadTex(p TexCoordPrecision) string {
	return fmt.Sprintf(`attribute %[1]s vec4 a_position;
attribute float a_index;
uniform mat4 matrix;
uniform %[1]s vec2 quad[4];
uniform %[1]s vec4 vertexTexTransform;
varying %[1]s vec2 v_texCoord;
void main() {
  vec2 pos = quad[int(a_index)];
  gl_Position = matrix * vec4(pos, a_position.z, a_position.w);
  v_texCoord = pos.xy * vertexTexTransform.zw + vertexTexTransform.xy;
}
`, p.glsl())
}

// aaCoverage is the fragment-side edge-distance test shared by every
// antialiased fragment shader. Edges 0..3 are the inflated layer
// boundary, edges 4..7 the inflated bounding box of the quad itself;
// coverage is the lesser of the two.
const aaCoverage = `  vec3 pos = vec3(gl_FragCoord.xy, 1.0);
  float a0 = clamp(dot(edge[0], pos), 0.0, 1.0);
  float a1 = clamp(dot(edge[1], pos), 0.0, 1.0);
  float a2 = clamp(dot(edge[2], pos), 0.0, 1.0);
  float a3 = clamp(dot(edge[3], pos), 0.0, 1.0);
  float a4 = clamp(dot(edge[4], pos), 0.0, 1.0);
  float a5 = clamp(dot(edge[5], pos), 0.0, 1.0);
  float a6 = clamp(dot(edge[6], pos), 0.0, 1.0);
  float a7 = clamp(dot(edge[7], pos), 0.0, 1.0);
  float coverage = min(a0 * a1 * a2 * a3, a4 * a5 * a6 * a7);
`

func fsColor() string {
	return `precision mediump float;
uniform vec4 color;
void main() {
  gl_FragColor = color;
}
`
}

func fsColorAA() string {
	return `precision mediump float;
uniform vec4 color;
uniform vec3 edge[8];
void main() {
` + aaCoverage + `  gl_FragColor = color * coverage;
}
`
}

func fsCheckerboard() string {
	return `precision mediump float;
varying vec2 v_texCoord;
uniform float alpha;
uniform float frequency;
uniform vec4 texTransform;
uniform vec4 color;
void main() {
  vec4 color1 = vec4(1.0, 1.0, 1.0, 1.0);
  vec4 color2 = color;
  vec2 texCoord = clamp(v_texCoord, 0.0, 1.0) * texTransform.zw + texTransform.xy;
  vec2 coord = mod(floor(texCoord * frequency * 2.0), 2.0);
  float picker = abs(coord.x - coord.y);
  gl_FragColor = mix(color1, color2, picker) * alpha;
}
`
}

// fsTexVaryingAlpha samples with a per-vertex alpha, assuming
// premultiplied texel data. Used by the batched texture path.
func fsTexVaryingAlpha(p TexCoordPrecision) string {
	return fmt.Sprintf(`precision mediump float;
varying %s vec2 v_texCoord;
varying float v_alpha;
uniform sampler2D s_texture;
void main() {
  vec4 texColor = texture2D(s_texture, v_texCoord);
  gl_FragColor = texColor * v_alpha;
}
`, p.glsl())
}

// fsTexPremultiplyVaryingAlpha premultiplies straight-alpha texel data
// in the shader; blending is configured separately for this case.
func fsTexPremultiplyVaryingAlpha(p TexCoordPrecision) string {
	return fmt.Sprintf(`precision mediump float;
varying %s vec2 v_texCoord;
varying float v_alpha;
uniform sampler2D s_texture;
void main() {
  vec4 texColor = texture2D(s_texture, v_texCoord);
  texColor.rgb *= texColor.a;
  gl_FragColor = texColor * v_alpha;
}
`, p.glsl())
}

// fsTexAlpha samples with one uniform alpha. swizzle reorders BGRA
// texel data; opaque skips the alpha multiply and forces alpha to one.
func fsTexAlpha(p TexCoordPrecision, swizzle, opaque bool) string {
	body := "  gl_FragColor = texColor * alpha;"
	alphaDecl := "uniform float alpha;\n"
	if opaque {
		body = "  gl_FragColor = vec4(texColor.rgb, 1.0);"
		alphaDecl = ""
	}
	return fmt.Sprintf(`precision mediump float;
varying %s vec2 v_texCoord;
uniform sampler2D s_texture;
%svoid main() {
  vec4 texColor = texture2D(s_texture, v_texCoord);
%s%s
}
`, p.glsl(), alphaDecl, swizzleLine(swizzle), body)
}

// fsTexClampAlphaAA is the antialiased tile shader. Texture lookups
// are clamped into the fragment transform's sub-rect so inflation
// never samples a neighboring tile's texels.
func fsTexClampAlphaAA(p TexCoordPrecision, swizzle bool) string {
	return fmt.Sprintf(`precision mediump float;
varying %[1]s vec2 v_texCoord;
uniform sampler2D s_texture;
uniform float alpha;
uniform %[1]s vec4 fragmentTexTransform;
uniform vec3 edge[8];
void main() {
  %[1]s vec2 texCoord = clamp(v_texCoord, 0.0, 1.0) * fragmentTexTransform.zw + fragmentTexTransform.xy;
  vec4 texColor = texture2D(s_texture, texCoord);
%[2]s`+aaCoverage+`  gl_FragColor = texColor * alpha * coverage;
}
`, p.glsl(), swizzleLine(swizzle))
}

func swizzleLine(swizzle bool) string {
	if !swizzle {
		return ""
	}
	return "  texColor = vec4(texColor.z, texColor.y, texColor.x, texColor.w);\n"
}

// fsRenderPass builds the render-pass fragment shader for one point in
// the {AA} x {mask} x {color matrix} variant space.
func fsRenderPass(p TexCoordPrecision, aa, mask, colorMatrix bool) string {
	src := "precision mediump float;\n"
	src += fmt.Sprintf("varying %s vec2 v_texCoord;\n", p.glsl())
	src += "uniform sampler2D s_texture;\nuniform float alpha;\n"
	if mask {
		src += "uniform sampler2D s_mask;\n"
		src += fmt.Sprintf("uniform %[1]s vec2 maskTexCoordScale;\nuniform %[1]s vec2 maskTexCoordOffset;\n", p.glsl())
	}
	if colorMatrix {
		src += "uniform mat4 colorMatrix;\nuniform vec4 colorOffset;\n"
	}
	if aa {
		src += "uniform vec3 edge[8];\n"
	}
	src += "void main() {\n"
	src += "  vec4 texColor = texture2D(s_texture, v_texCoord);\n"
	if colorMatrix {
		// The matrix operates on straight alpha.
		src += `  float nonZeroAlpha = max(texColor.a, 0.00001);
  texColor = vec4(texColor.rgb / nonZeroAlpha, nonZeroAlpha);
  texColor = colorMatrix * texColor + colorOffset;
  texColor.rgb *= texColor.a;
  texColor = clamp(texColor, 0.0, 1.0);
`
	}
	if mask {
		src += fmt.Sprintf("  %s vec2 maskTexCoord = maskTexCoordOffset + v_texCoord * maskTexCoordScale;\n", p.glsl())
		src += "  vec4 maskColor = texture2D(s_mask, maskTexCoord);\n"
	}
	factor := "alpha"
	if mask {
		factor += " * maskColor.w"
	}
	if aa {
		src += aaCoverage
		factor += " * coverage"
	}
	src += fmt.Sprintf("  gl_FragColor = texColor * %s;\n}\n", factor)
	return src
}

// fsTexRect samples an ARB rectangle texture with unnormalized
// coordinates.
func fsTexRect(p TexCoordPrecision) string {
	return fmt.Sprintf(`#extension GL_ARB_texture_rectangle : require
precision mediump float;
varying %s vec2 v_texCoord;
uniform sampler2DRect s_texture;
uniform float alpha;
void main() {
  vec4 texColor = texture2DRect(s_texture, v_texCoord);
  gl_FragColor = texColor * alpha;
}
`, p.glsl())
}

// fsTexExternal samples a GL_OES_EGL_image_external stream texture.
func fsTexExternal(p TexCoordPrecision) string {
	return fmt.Sprintf(`#extension GL_OES_EGL_image_external : require
precision mediump float;
varying %s vec2 v_texCoord;
uniform samplerExternalOES s_texture;
uniform float alpha;
void main() {
  vec4 texColor = texture2D(s_texture, v_texCoord);
  gl_FragColor = texColor * alpha;
}
`, p.glsl())
}

// fsYUVVideo converts planar YUV to premultiplied RGBA in the fragment
// stage.
func fsYUVVideo(p TexCoordPrecision) string {
	return fmt.Sprintf(`precision mediump float;
varying %s vec2 v_texCoord;
uniform sampler2D y_texture;
uniform sampler2D u_texture;
uniform sampler2D v_texture;
uniform float alpha;
uniform vec3 yuv_adj;
uniform mat3 yuv_matrix;
void main() {
  float y_raw = texture2D(y_texture, v_texCoord).x;
  float u_unsigned = texture2D(u_texture, v_texCoord).x;
  float v_unsigned = texture2D(v_texture, v_texCoord).x;
  vec3 yuv = vec3(y_raw, u_unsigned, v_unsigned) + yuv_adj;
  vec3 rgb = yuv_matrix * yuv;
  gl_FragColor = vec4(rgb, 1.0) * alpha;
}
`, p.glsl())
}
