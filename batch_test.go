package mosaic

import (
	"testing"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
)

func textureQuad(shared *quads.SharedState, rect geom.Rect, res quads.ResourceID) *quads.TextureQuad {
	return &quads.TextureQuad{
		Base:               newBase(shared, rect),
		ResourceID:         res,
		PremultipliedAlpha: true,
		UVBottomRight:      geom.PointF{X: 1, Y: 1},
		VertexOpacity:      [4]float32{1, 1, 1, 1},
	}
}

func TestTextureQuadsBatchIntoOneDraw(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, resources, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	var qs []quads.Quad
	for i := 0; i < 4; i++ {
		qs = append(qs, textureQuad(shared, geom.Rect{X: i * 10, Width: 10, Height: 10}, 7))
	}
	drawOneFrame(t, r, rootPass(viewport, qs...))

	if n := ctx.drawCount(gl.Triangles); n != 1 {
		t.Fatalf("triangle draws = %d, want 1", n)
	}
	if got := ctx.draws[0].count; got != 24 {
		t.Errorf("batched draw indices = %d, want 24", got)
	}
	if got := len(ctx.floats["matrix"]); got != 4*16 {
		t.Errorf("matrix upload has %d floats, want %d", got, 4*16)
	}
	if got := len(ctx.floats["texTransform"]); got != 4*4 {
		t.Errorf("texTransform upload has %d floats, want %d", got, 4*4)
	}
	if got := len(ctx.floats["opacity"]); got != 4*4 {
		t.Errorf("opacity upload has %d floats, want %d", got, 4*4)
	}
	if ids := resources.unbalancedLocks(); len(ids) != 0 {
		t.Errorf("unbalanced resource locks: %v", ids)
	}
}

func TestTextureQuadBatchBreaksOnResourceChange(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	drawOneFrame(t, r, rootPass(viewport,
		textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7),
		textureQuad(shared, geom.Rect{X: 10, Width: 10, Height: 10}, 8)))

	if n := ctx.drawCount(gl.Triangles); n != 2 {
		t.Errorf("triangle draws = %d, want 2", n)
	}
}

func TestTextureQuadBatchSplitsAtCapacity(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	var qs []quads.Quad
	for i := 0; i < 9; i++ {
		qs = append(qs, textureQuad(shared, geom.Rect{X: i * 10, Width: 10, Height: 10}, 7))
	}
	drawOneFrame(t, r, rootPass(viewport, qs...))

	var counts []int
	for _, d := range ctx.draws {
		if d.mode == gl.Triangles {
			counts = append(counts, d.count)
		}
	}
	if len(counts) != 2 || counts[0] != 48 || counts[1] != 6 {
		t.Errorf("batched draw counts = %v, want [48 6]", counts)
	}
}

func TestTextureQuadBatchFlushesBeforeOtherMaterials(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	drawOneFrame(t, r, rootPass(viewport,
		textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7),
		solidQuad(shared, geom.Rect{X: 10, Width: 10, Height: 10}, quads.Color{A: 255}),
		textureQuad(shared, geom.Rect{X: 20, Width: 10, Height: 10}, 7)))

	var counts []int
	for _, d := range ctx.draws {
		if d.mode == gl.Triangles {
			counts = append(counts, d.count)
		}
	}
	// Batch flush, solid color, batch flush: paint order preserved.
	if len(counts) != 3 || counts[0] != 6 || counts[1] != 6 || counts[2] != 6 {
		t.Errorf("draw counts = %v, want [6 6 6]", counts)
	}
}

func TestNonPremultipliedTextureBlending(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	quad := textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7)
	quad.PremultipliedAlpha = false
	quad.NeedsBlending = true
	drawOneFrame(t, r, rootPass(viewport, quad))

	// Frame setup, the straight-alpha switch, and the restore.
	want := [][2]gl.Enum{
		{gl.One, gl.OneMinusSrcAlpha},
		{gl.SrcAlpha, gl.OneMinusSrcAlpha},
		{gl.One, gl.OneMinusSrcAlpha},
	}
	if len(ctx.blendFuncs) != len(want) {
		t.Fatalf("blend func calls = %v, want %v", ctx.blendFuncs, want)
	}
	for i := range want {
		if ctx.blendFuncs[i] != want[i] {
			t.Errorf("blend func %d = %v, want %v", i, ctx.blendFuncs[i], want[i])
		}
	}
}

func TestTextureQuadFlipFoldsIntoUVTransform(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	quad := textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7)
	quad.Flipped = true
	drawOneFrame(t, r, rootPass(viewport, quad))

	uv := ctx.floats["texTransform"]
	if len(uv) != 4 {
		t.Fatalf("texTransform upload has %d floats, want 4", len(uv))
	}
	// uv (0,0)-(1,1) flipped: origin at v=1, negative v extent.
	want := [4]float32{0, 1, 1, -1}
	for i := range want {
		if uv[i] != want[i] {
			t.Errorf("texTransform[%d] = %v, want %v", i, uv[i], want[i])
		}
	}
}

func TestTextureQuadVertexOpacityScalesWithLayerOpacity(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 0.5)
	quad := textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7)
	quad.VertexOpacity = [4]float32{1, 0.5, 1, 0.5}
	drawOneFrame(t, r, rootPass(viewport, quad))

	got := ctx.floats["opacity"]
	want := []float32{0.5, 0.25, 0.5, 0.25}
	if len(got) != len(want) {
		t.Fatalf("opacity upload has %d floats, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opacity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTextureQuadSkippedWhenResourceUnavailable(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, resources, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)
	resources.failRead[7] = true

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	drawOneFrame(t, r, rootPass(viewport, textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7)))

	if n := ctx.drawCount(gl.Triangles); n != 0 {
		t.Errorf("triangle draws = %d, want 0 for an unavailable resource", n)
	}
}

func TestFlushWithEmptyBatchIsNoop(t *testing.T) {
	viewport := geom.Rect{Width: 100, Height: 100}
	r, ctx, _, _, _ := newTestRenderer(t, "", nil, RendererOptions{}, viewport)

	shared := newShared(geom.Identity(), geom.Size{Width: 100, Height: 100}, 1)
	drawOneFrame(t, r, rootPass(viewport, textureQuad(shared, geom.Rect{Width: 10, Height: 10}, 7)))
	if n := ctx.drawCount(gl.Triangles); n != 1 {
		t.Fatalf("triangle draws = %d, want 1", n)
	}

	// The frame's end already flushed; flushing again with nothing
	// queued must touch neither the device nor the batch state.
	draws, programs := len(ctx.draws), ctx.boundProgram
	r.flushTextureQuadCache(&r.frame)
	r.flushTextureQuadCache(&r.frame)
	if len(ctx.draws) != draws {
		t.Errorf("empty flush issued %d extra draws", len(ctx.draws)-draws)
	}
	if ctx.boundProgram != programs {
		t.Errorf("empty flush rebound program %d", ctx.boundProgram)
	}
}
