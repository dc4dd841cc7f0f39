package mosaic

// RendererOptions tunes the draw path. The zero value is usable;
// DefaultOptions fills in the thresholds most devices want.
type RendererOptions struct {
	// HighpThresholdMin is the content-coordinate extent above which
	// texture coordinates are computed at high precision. Zero disables
	// the minimum and defers entirely to the per-quad extent check.
	HighpThresholdMin int
	// AllowPartialSwap permits swapping only the damaged sub-rect when
	// the device supports it.
	AllowPartialSwap bool
	// DebugChecks turns invariant violations into panics and clears
	// opaque targets to a loud color so missed draws show up.
	DebugChecks bool
	// ForceReadbackWorkaround routes framebuffer readback through an
	// intermediate texture even when the device does not require it.
	ForceReadbackWorkaround bool
}

func DefaultOptions() RendererOptions {
	return RendererOptions{
		HighpThresholdMin: 2048,
		AllowPartialSwap:  true,
	}
}
