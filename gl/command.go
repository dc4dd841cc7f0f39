package gl

import "errors"

// ErrDeviceLost reports that the device behind the context was reset.
// Once observed, the renderer skips remaining draws for the frame and
// suppresses invariant checks that a lost device can legitimately violate.
var ErrDeviceLost = errors.New("gl: device lost")

// CommandBuffer is the submission path for all renderer-issued commands.
// It forwards to the underlying Context and keeps a sticky status: the
// reset status is polled once per DrawElements, and once the device is
// observed lost every later draw becomes a no-op. Non-draw state calls
// still pass through; on a lost context they are harmless.
type CommandBuffer struct {
	Ctx  Context
	lost bool
}

func NewCommandBuffer(ctx Context) *CommandBuffer {
	return &CommandBuffer{Ctx: ctx}
}

// Status returns nil or ErrDeviceLost.
func (cb *CommandBuffer) Status() error {
	if cb.lost {
		return ErrDeviceLost
	}
	return nil
}

// DeviceLost reports whether loss has been observed. It re-polls the
// context so the first draw of a frame on a freshly lost device is also
// caught.
func (cb *CommandBuffer) DeviceLost() bool {
	if cb.lost {
		return true
	}
	if cb.Ctx.GetGraphicsResetStatus() != NoError {
		cb.lost = true
	}
	return cb.lost
}

// DrawElements submits one draw and polls the reset status afterwards.
// Draws after an observed loss are dropped.
func (cb *CommandBuffer) DrawElements(mode Enum, count int, ty Enum, offset int) {
	if cb.lost {
		return
	}
	cb.Ctx.DrawElements(mode, count, ty, offset)
	if cb.Ctx.GetGraphicsResetStatus() != NoError {
		cb.lost = true
	}
}
