package gpu

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gekko3d/hellocube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DefaultRingSize covers triple buffering.
const DefaultRingSize = 3

var (
	ErrPoolClosed  = errors.New("uniform ring closed")
	ErrSlotTimeout = errors.New("timed out waiting for a uniform slot")
	ErrSlotState   = errors.New("uniform slot in wrong state")
	ErrLightLayout = errors.New("light record does not match ring layout")
)

type SlotState int32

const (
	SlotFree SlotState = iota
	SlotAcquired
	SlotSubmitted
)

func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotAcquired:
		return "acquired"
	case SlotSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Slot is a handle to one checked-out region of a UniformRing. gen tells
// apart successive checkouts of the same index, so a late or duplicate
// completion for an old frame cannot free the slot from under a newer one.
type Slot struct {
	index int
	gen   uint64
	ring  *UniformRing
}

func (s Slot) Index() int { return s.index }

// Backing is the GPU-visible copy of a slot.
type Backing interface {
	Write(offset uint64, data []byte) error
	Release()
}

// BackingAllocator creates the backing for slot index with the given byte size.
type BackingAllocator func(index int, size int) (Backing, error)

// A slot's generation and state share one word: gen<<2 | state.
const stateMask = 3

func pack(gen uint64, state SlotState) uint64 { return gen<<2 | uint64(state) }

type ringSlot struct {
	mem []byte
	// guarded by UniformRing.mu
	backing Backing
	word    atomic.Uint64
	// holds one token while the slot is Free
	idle chan struct{}
}

func (s *ringSlot) load() (uint64, SlotState) {
	w := s.word.Load()
	return w >> 2, SlotState(w & stateMask)
}

// UniformRing is a fixed pool of uniform slots handed out round-robin.
// At most Size() slots are checked out at once; Acquire blocks until
// a previously submitted slot is released by its completion callback.
type UniformRing struct {
	label    string
	lit      bool
	slotSize int
	slots    []*ringSlot
	alloc    BackingAllocator
	logger   hellocube.Logger

	credits chan struct{}
	// turn serializes acquirers around the cursor; holds a token when nobody is acquiring
	turn   chan struct{}
	cursor int

	done      chan struct{}
	closeOnce sync.Once
	// read-held while a backing is written, write-held while backings are released
	mu sync.RWMutex
}

type RingOption func(*UniformRing)

func WithBacking(alloc BackingAllocator) RingOption {
	return func(r *UniformRing) {
		r.alloc = alloc
	}
}

func WithRingLogger(logger hellocube.Logger) RingOption {
	return func(r *UniformRing) {
		r.logger = logger
	}
}

func WithLabel(label string) RingOption {
	return func(r *UniformRing) {
		r.label = label
	}
}

func NewUniformRing(size int, lit bool, opts ...RingOption) (*UniformRing, error) {
	if size < 1 {
		return nil, errors.Errorf("uniform ring size must be positive, got %d", size)
	}

	r := &UniformRing{
		label:    "uniforms",
		lit:      lit,
		slotSize: SlotSize(lit),
		slots:    make([]*ringSlot, size),
		credits:  make(chan struct{}, size),
		turn:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = hellocube.OrNop(r.logger).With(r.label)

	for i := range r.slots {
		s := &ringSlot{
			mem:  make([]byte, r.slotSize),
			idle: make(chan struct{}, 1),
		}
		if r.alloc != nil {
			b, err := r.alloc(i, r.slotSize)
			if err != nil {
				r.releaseBackings()
				return nil, errors.Wrapf(err, "%s: allocate slot %d", r.label, i)
			}
			s.backing = b
		}
		s.idle <- struct{}{}
		r.slots[i] = s
		r.credits <- struct{}{}
	}
	r.turn <- struct{}{}

	r.logger.Debugf("ring of %d slots, %d bytes each", size, r.slotSize)
	return r, nil
}

func (r *UniformRing) Size() int     { return len(r.slots) }
func (r *UniformRing) SlotSize() int { return r.slotSize }
func (r *UniformRing) Lit() bool     { return r.lit }

// Available returns the number of credits left in the gate.
func (r *UniformRing) Available() int { return len(r.credits) }

// Outstanding returns the number of slots acquired and not yet released.
func (r *UniformRing) Outstanding() int {
	n := 0
	for _, s := range r.slots {
		if _, state := s.load(); state != SlotFree {
			n++
		}
	}
	return n
}

// WouldBlock reports whether the next Acquire would have to wait for a
// release: no credit is left, or the round-robin slot is still out. A closed
// ring never blocks. Call it from the acquiring goroutine.
func (r *UniformRing) WouldBlock() bool {
	if r.Closed() {
		return false
	}
	if len(r.credits) == 0 {
		return true
	}
	return r.State(r.cursor) != SlotFree
}

func (r *UniformRing) State(index int) SlotState {
	_, state := r.slots[index].load()
	return state
}

func (r *UniformRing) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Acquire waits without bound for the next slot. It only fails with ErrPoolClosed.
func (r *UniformRing) Acquire() (Slot, error) {
	return r.AcquireContext(context.Background())
}

// AcquireTimeout waits at most d for the next slot; d <= 0 waits without bound.
func (r *UniformRing) AcquireTimeout(d time.Duration) (Slot, error) {
	if d <= 0 {
		return r.Acquire()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.AcquireContext(ctx)
}

// AcquireContext waits for a gate credit and for the round-robin slot to be
// Free, then hands it out and advances the cursor. An expired deadline
// yields ErrSlotTimeout, a closed ring ErrPoolClosed.
func (r *UniformRing) AcquireContext(ctx context.Context) (Slot, error) {
	if r.Closed() {
		return Slot{}, ErrPoolClosed
	}

	if err := r.wait(ctx, r.turn); err != nil {
		return Slot{}, err
	}
	defer func() { r.turn <- struct{}{} }()

	if err := r.wait(ctx, r.credits); err != nil {
		return Slot{}, err
	}

	index := r.cursor
	s := r.slots[index]
	// Out-of-order completion can leave the round-robin slot Submitted
	// while another slot returned the credit.
	if err := r.wait(ctx, s.idle); err != nil {
		r.refund(r.credits)
		return Slot{}, err
	}

	if r.Closed() {
		r.refund(s.idle)
		r.refund(r.credits)
		return Slot{}, ErrPoolClosed
	}

	// Holding the idle token makes this the only writer of a Free slot.
	gen, _ := s.load()
	gen++
	s.word.Store(pack(gen, SlotAcquired))
	r.cursor = (r.cursor + 1) % len(r.slots)
	return Slot{index: index, gen: gen, ring: r}, nil
}

func (r *UniformRing) wait(ctx context.Context, ch chan struct{}) error {
	select {
	case <-r.done:
		return ErrPoolClosed
	default:
	}

	select {
	case <-ch:
		return nil
	case <-r.done:
		return ErrPoolClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrSlotTimeout
		}
		return errors.Wrapf(ctx.Err(), "%s: acquire", r.label)
	}
}

func (r *UniformRing) refund(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (r *UniformRing) slot(s Slot) (*ringSlot, error) {
	if s.ring != r || s.index < 0 || s.index >= len(r.slots) {
		return nil, errors.Wrapf(ErrSlotState, "%s: slot %d does not belong to this ring", r.label, s.index)
	}
	return r.slots[s.index], nil
}

// Write copies modelView, projection and light into the slot at their fixed
// offsets, then mirrors the bytes into the slot's backing. light must be set
// for lit rings and nil otherwise.
func (r *UniformRing) Write(s Slot, modelView, projection mgl32.Mat4, light *LightRecord) error {
	rs, err := r.slot(s)
	if err != nil {
		return err
	}
	if gen, state := rs.load(); gen != s.gen || state != SlotAcquired {
		return errors.Wrapf(ErrSlotState, "%s: write to slot %d (gen %d) while %s (gen %d)", r.label, s.index, s.gen, state, gen)
	}
	if r.lit != (light != nil) {
		return errors.Wrapf(ErrLightLayout, "%s: lit=%t", r.label, r.lit)
	}

	encodeUniforms(rs.mem, modelView, projection, light)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Closed() {
		return ErrPoolClosed
	}
	if rs.backing != nil {
		if err := rs.backing.Write(0, rs.mem); err != nil {
			return errors.Wrapf(err, "%s: upload slot %d", r.label, s.index)
		}
	}
	return nil
}

// Submit hands the slot to the GPU. It must not be written again until released.
func (r *UniformRing) Submit(s Slot) error {
	rs, err := r.slot(s)
	if err != nil {
		return err
	}
	if !rs.word.CompareAndSwap(pack(s.gen, SlotAcquired), pack(s.gen, SlotSubmitted)) {
		gen, state := rs.load()
		return errors.Wrapf(ErrSlotState, "%s: submit slot %d (gen %d) while %s (gen %d)", r.label, s.index, s.gen, state, gen)
	}
	return nil
}

// Release returns the slot and one gate credit. It is meant to be called from
// the GPU completion callback and is safe to call concurrently with Acquire.
// Releasing a slot that is already Free, or a handle from an earlier
// checkout of the slot, is ignored.
func (r *UniformRing) Release(s Slot) {
	rs, err := r.slot(s)
	if err != nil {
		r.logger.Warnf("release: %v", err)
		return
	}
	if !rs.word.CompareAndSwap(pack(s.gen, SlotSubmitted), pack(s.gen, SlotFree)) &&
		!rs.word.CompareAndSwap(pack(s.gen, SlotAcquired), pack(s.gen, SlotFree)) {
		gen, state := rs.load()
		if gen != s.gen {
			r.logger.Warnf("stale release of slot %d: gen %d, slot is at gen %d (%s)", s.index, s.gen, gen, state)
		} else {
			r.logger.Warnf("slot %d released while %s", s.index, state)
		}
		return
	}
	r.refund(rs.idle)
	r.refund(r.credits)
}

// Bytes returns the slot's CPU backing memory.
func (r *UniformRing) Bytes(s Slot) []byte {
	rs, err := r.slot(s)
	if err != nil {
		return nil
	}
	return rs.mem
}

// Backing returns the GPU backing of slot index, or nil once the ring is closed.
func (r *UniformRing) Backing(index int) Backing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[index].backing
}

// Close unblocks every waiter with ErrPoolClosed, restores all gate credits
// and releases the backings. Safe to call more than once.
func (r *UniformRing) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		for range r.slots {
			r.refund(r.credits)
		}
		// Waits out any Write still uploading.
		r.mu.Lock()
		r.releaseBackings()
		r.mu.Unlock()
		r.logger.Debugf("closed")
	})
}

func (r *UniformRing) releaseBackings() {
	for _, s := range r.slots {
		if s != nil && s.backing != nil {
			s.backing.Release()
			s.backing = nil
		}
	}
}
