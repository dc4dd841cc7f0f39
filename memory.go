package mosaic

// SetMemoryAllocation installs the memory manager's budget. The policy
// half is forwarded to the client, through the enforce-now channel when
// the allocation asks for that; the backbuffer half applies here.
func (r *Renderer) SetMemoryAllocation(allocation MemoryAllocation) {
	// The manager sends a zero visible limit when it believes the
	// renderer is invisible, which the renderer itself knows better.
	// Such an allocation carries no policy worth forwarding.
	if allocation.BytesLimitWhenVisible != 0 {
		policy := MemoryPolicy{
			BytesLimitWhenVisible:    allocation.BytesLimitWhenVisible,
			CutoffWhenVisible:        allocation.PriorityCutoffWhenVisible,
			BytesLimitWhenNotVisible: allocation.BytesLimitWhenNotVisible,
			CutoffWhenNotVisible:     allocation.PriorityCutoffWhenNotVisible,
		}
		if allocation.EnforceButDoNotKeepAsPolicy {
			r.client.EnforceMemoryPolicy(policy)
		} else {
			r.client.SetMemoryPolicy(policy)
		}
	}

	oldAllocation := r.memoryAllocation
	oldHave := r.haveMemoryAllocation
	r.memoryAllocation = allocation
	r.haveMemoryAllocation = true
	r.enforceMemoryPolicy()
	if allocation.EnforceButDoNotKeepAsPolicy {
		r.memoryAllocation = oldAllocation
		r.haveMemoryAllocation = oldHave
	}
}

// enforceMemoryPolicy drops what an invisible renderer does not need:
// cached pass textures, and the backbuffer unless the allocation asks
// to keep it.
func (r *Renderer) enforceMemoryPolicy() {
	if r.visible {
		return
	}
	Logger().Debug("dropping resources while invisible")
	r.releasePassTextures()
	if !r.haveMemoryAllocation || !r.memoryAllocation.HaveBackbufferWhenNotVisible {
		r.discardBackbuffer()
	}
	r.cb.Ctx.Flush()
}

func (r *Renderer) discardBackbuffer() {
	if r.backbufferDiscarded {
		return
	}
	r.surface.DiscardBackbuffer()
	r.backbufferDiscarded = true

	// Nothing survives a discarded backbuffer; the next frame must
	// repaint everything.
	r.client.SetFullRootLayerDamage()
}

func (r *Renderer) ensureBackbuffer() {
	if !r.backbufferDiscarded {
		return
	}
	r.surface.EnsureBackbuffer()
	r.backbufferDiscarded = false
}
