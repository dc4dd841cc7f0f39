package mosaic

// swapFence is a client-side stand-in for a real GPU fence: assuming a
// double-buffered pipeline, a texture read during one frame is safe to
// write once the following frame has swapped.
type swapFence struct {
	passed bool
}

func (f *swapFence) HasPassed() bool { return f.passed }

// rotateSwapFence marks the previous swap's fence as passed and
// installs a fresh fence for the resources this frame read.
func (r *Renderer) rotateSwapFence() {
	if r.pendingFence != nil {
		r.pendingFence.passed = true
	}
	r.pendingFence = &swapFence{}
	r.resources.SetReadLockFence(r.pendingFence)
}
