package term

// Checkpoint marks a position on the trail. It is the trail length at the
// time Branch was called.
type Checkpoint int

type trailEntry struct {
	v    *Var
	prev Term
}

// Heap owns variable creation and the trail of bindings for one query at a
// time.
//
// Every binding goes through Bind (or AddTrail), which appends one undo
// record. Revert pops records back to a checkpoint, restoring each variable
// to its previous binding. Checkpoints must be resolved in LIFO order: an
// inner checkpoint is reverted or discarded before an outer one is reverted.
type Heap struct {
	trail  []trailEntry
	nextID int64
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{trail: make([]trailEntry, 0, 1024)}
}

// NewVar allocates a fresh unbound variable.
func (h *Heap) NewVar() *Var {
	h.nextID++
	return &Var{id: h.nextID}
}

// AddTrail records that v held prev before its current binding.
func (h *Heap) AddTrail(v *Var, prev Term) {
	h.trail = append(h.trail, trailEntry{v: v, prev: prev})
}

// Bind sets v to t and trails the old value. Binding a variable to the
// value it already has is a no-op and leaves the trail unchanged.
func (h *Heap) Bind(v *Var, t Term) {
	if v.ref == t {
		return
	}
	h.AddTrail(v, v.ref)
	v.ref = t
}

// Branch returns a checkpoint for the current trail position.
func (h *Heap) Branch() Checkpoint {
	return Checkpoint(len(h.trail))
}

// Revert undoes every binding recorded since cp. Afterwards TrailLen()
// equals cp.
func (h *Heap) Revert(cp Checkpoint) {
	for i := len(h.trail) - 1; i >= int(cp); i-- {
		e := h.trail[i]
		e.v.ref = e.prev
		h.trail[i] = trailEntry{}
	}
	h.trail = h.trail[:cp]
}

// Discard declares that cp will never be reverted to. The trail is kept as
// is because an older checkpoint may still need its entries.
func (h *Heap) Discard(cp Checkpoint) {}

// TrailLen returns the number of undo records.
func (h *Heap) TrailLen() int {
	return len(h.trail)
}

// Reset forgets all undo records without touching bindings. It is called
// between top-level queries.
func (h *Heap) Reset() {
	clear(h.trail)
	h.trail = h.trail[:0]
}

// Deref is like the package-level Deref but compresses chains of two or
// more variables so that the first variable points directly at the end of
// the chain. The compression is trailed, so Revert restores the original
// chain exactly.
func (h *Heap) Deref(t Term) Term {
	v, ok := t.(*Var)
	if !ok || v.ref == nil {
		return t
	}
	next, ok := v.ref.(*Var)
	if !ok || next.ref == nil {
		return v.ref
	}
	end := Deref(next)
	h.Bind(v, end)
	return end
}
