package mosaic

import (
	"honnef.co/go/safeish"

	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/shaders"
)

// quadGeometry is the one vertex/index buffer pair every draw uses:
// eight unit quads centered on the origin. Unbatched draws use the
// first quad's six indices; batched draws cover one quad per batch
// entry, selected in the vertex shader through a_index.
type quadGeometry struct {
	vertexBuffer gl.Buffer
	indexBuffer  gl.Buffer
}

// Vertex layout: x, y, u, v, index. The quad corners run top-left,
// bottom-left, bottom-right, top-right in y-down content space.
const vertexStride = 5 * 4

var quadCorners = [4][4]float32{
	{-0.5, -0.5, 0, 0},
	{-0.5, 0.5, 0, 1},
	{0.5, 0.5, 1, 1},
	{0.5, -0.5, 1, 0},
}

func newQuadGeometry(ctx gl.Context) *quadGeometry {
	vertices := make([]float32, 0, shaders.MaxBatchQuads*4*5)
	indices := make([]uint16, 0, shaders.MaxBatchQuads*6)
	for quad := 0; quad < shaders.MaxBatchQuads; quad++ {
		for corner, v := range quadCorners {
			vertices = append(vertices, v[0], v[1], v[2], v[3], float32(quad*4+corner))
		}
		// Triangles (0,1,2) and (3,0,2). The first four indices double
		// as a line loop around the quad's perimeter.
		base := uint16(quad * 4)
		indices = append(indices, base, base+1, base+2, base+3, base, base+2)
	}

	g := &quadGeometry{
		vertexBuffer: ctx.CreateBuffer(),
		indexBuffer:  ctx.CreateBuffer(),
	}
	ctx.BindBuffer(gl.ArrayBuffer, g.vertexBuffer)
	ctx.BufferData(gl.ArrayBuffer, safeish.SliceCast[[]byte](vertices), gl.StaticDraw)
	ctx.BindBuffer(gl.ElementArrayBuffer, g.indexBuffer)
	ctx.BufferData(gl.ElementArrayBuffer, safeish.SliceCast[[]byte](indices), gl.StaticDraw)
	return g
}

// bind makes the shared geometry current and wires the three vertex
// attributes. Called once per frame; every program shares the layout.
func (g *quadGeometry) bind(ctx gl.Context) {
	ctx.BindBuffer(gl.ArrayBuffer, g.vertexBuffer)
	ctx.BindBuffer(gl.ElementArrayBuffer, g.indexBuffer)
	ctx.VertexAttribPointer(shaders.PositionAttrib, 2, gl.Float, false, vertexStride, 0)
	ctx.EnableVertexAttribArray(shaders.PositionAttrib)
	ctx.VertexAttribPointer(shaders.TexCoordAttrib, 2, gl.Float, false, vertexStride, 2*4)
	ctx.EnableVertexAttribArray(shaders.TexCoordAttrib)
	ctx.VertexAttribPointer(shaders.IndexAttrib, 1, gl.Float, false, vertexStride, 4*4)
	ctx.EnableVertexAttribArray(shaders.IndexAttrib)
}

func (g *quadGeometry) release(ctx gl.Context) {
	ctx.DeleteBuffer(g.vertexBuffer)
	ctx.DeleteBuffer(g.indexBuffer)
}
