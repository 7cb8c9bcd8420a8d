package stardust

import "math"

// PoolConfig controls a ParticlePool.
type PoolConfig struct {
	// InitialSize is the number of particles preallocated onto the free list.
	InitialSize int
	// MaxSize caps the total number of particles the pool will ever
	// allocate. Zero means unbounded. When the cap is reached and the free
	// list is empty, Acquire steals the oldest active particle.
	MaxSize int
}

// PoolStats is a snapshot of a ParticlePool.
type PoolStats struct {
	PoolSize       int // particles on the free list
	ActiveCount    int // particles checked out
	TotalAllocated int // PoolSize + ActiveCount
	Stolen         int // active particles reclaimed by the MaxSize cap
}

// ParticlePool recycles Particle records so bursts and continuous emitters
// do not allocate per frame. After warmup, Acquire and Release are
// zero-alloc.
//
// A particle is always in exactly one of: the free list, or the active set.
type ParticlePool struct {
	free    []*Particle
	active  []*Particle
	maxSize int
	nextSeq uint64
	stolen  int
}

// NewParticlePool creates a pool with cfg.InitialSize preallocated particles.
func NewParticlePool(cfg PoolConfig) *ParticlePool {
	n := cfg.InitialSize
	if cfg.MaxSize > 0 && n > cfg.MaxSize {
		n = cfg.MaxSize
	}
	p := &ParticlePool{
		free:    make([]*Particle, 0, n),
		active:  make([]*Particle, 0, n),
		maxSize: cfg.MaxSize,
	}
	for i := 0; i < n; i++ {
		p.free = append(p.free, &Particle{})
	}
	return p
}

// Acquire returns a particle initialized from props and marks it in use.
// The particle comes from the free list when possible and is newly
// allocated otherwise.
func (p *ParticlePool) Acquire(props ParticleProps) *Particle {
	var pt *Particle
	switch {
	case len(p.free) > 0:
		last := len(p.free) - 1
		pt = p.free[last]
		p.free[last] = nil
		p.free = p.free[:last]
	case p.maxSize > 0 && len(p.active) >= p.maxSize:
		pt = p.stealOldest()
	default:
		pt = &Particle{}
	}

	pt.reset(props)
	pt.inUse = true
	pt.seq = p.nextSeq
	p.nextSeq++
	pt.poolIndex = len(p.active)
	p.active = append(p.active, pt)
	return pt
}

// stealOldest detaches the longest-lived active particle from its field and
// the active set so it can be handed out again. The caller re-adds it.
func (p *ParticlePool) stealOldest() *Particle {
	oldest := 0
	for i, pt := range p.active {
		if pt.seq < p.active[oldest].seq {
			oldest = i
		}
	}
	pt := p.active[oldest]
	if f := pt.owner; f != nil {
		if f.onSteal != nil {
			f.onSteal(pt)
		}
		f.detach(pt)
	}
	p.removeActive(pt)
	p.stolen++
	return pt
}

// Release returns pt to the free list. Releasing nil or an already released
// particle does nothing.
func (p *ParticlePool) Release(pt *Particle) {
	if pt == nil || !pt.inUse {
		return
	}
	pt.inUse = false
	if pt.owner != nil {
		pt.owner.detach(pt)
	}
	p.removeActive(pt)
	p.free = append(p.free, pt)
}

// ReleaseMany releases every particle in pts.
func (p *ParticlePool) ReleaseMany(pts []*Particle) {
	for _, pt := range pts {
		p.Release(pt)
	}
}

// removeActive swap-removes pt from the active slice.
func (p *ParticlePool) removeActive(pt *Particle) {
	i := pt.poolIndex
	last := len(p.active) - 1
	if i < 0 || i > last || p.active[i] != pt {
		return
	}
	if i != last {
		moved := p.active[last]
		p.active[i] = moved
		moved.poolIndex = i
	}
	p.active[last] = nil
	p.active = p.active[:last]
	pt.poolIndex = -1
}

// Active returns a snapshot of the particles currently in use.
func (p *ParticlePool) Active() []*Particle {
	out := make([]*Particle, len(p.active))
	copy(out, p.active)
	return out
}

// Available returns how many particles Acquire can hand out without stealing
// an active one. An unbounded pool reports math.MaxInt.
func (p *ParticlePool) Available() int {
	if p.maxSize <= 0 {
		return math.MaxInt
	}
	return len(p.free) + max(p.maxSize-len(p.free)-len(p.active), 0)
}

// ActiveCount returns the number of particles in use.
func (p *ParticlePool) ActiveCount() int {
	return len(p.active)
}

// Stats returns a snapshot of the pool.
func (p *ParticlePool) Stats() PoolStats {
	return PoolStats{
		PoolSize:       len(p.free),
		ActiveCount:    len(p.active),
		TotalAllocated: len(p.free) + len(p.active),
		Stolen:         p.stolen,
	}
}

// Clear force-releases every active particle.
func (p *ParticlePool) Clear() {
	for _, pt := range p.active {
		pt.inUse = false
		pt.poolIndex = -1
		if pt.owner != nil {
			pt.owner.detach(pt)
		}
		p.free = append(p.free, pt)
	}
	clear(p.active)
	p.active = p.active[:0]
}
