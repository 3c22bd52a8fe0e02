package visualization

// mulberry32 increment (odd, so the state walks all 2^32 values)
const mulberryIncrement uint32 = 0x6D2B79F5

// Mulberry32 is a small deterministic pseudo-random generator.
//
// All arithmetic is performed on uint32 with wraparound, which keeps the
// sequence identical to other mulberry32 implementations for the same seed.
// A Mulberry32 is not safe for concurrent use; each layout computation owns
// its generators.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a generator seeded with seed
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next advances the generator and returns the next 32-bit output
func (m *Mulberry32) Next() uint32 {
	m.state += mulberryIncrement
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns a value in [0, 1)
func (m *Mulberry32) Float64() float64 {
	return float64(m.Next()) / 4294967296.0
}

// Range returns a value uniformly drawn from [lo, hi)
func (m *Mulberry32) Range(lo, hi float64) float64 {
	return lo + m.Float64()*(hi-lo)
}
