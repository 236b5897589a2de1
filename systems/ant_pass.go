package systems

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/pthm-cable/antsim/components"
)

// pendingDeposit is a validated deposit waiting to be applied.
type pendingDeposit struct {
	idx  int
	kind components.PheromoneKind
}

// depositBuffer collects a chunk's deposits while chunks run concurrently.
// It only reads the field's dimensions.
type depositBuffer struct {
	field   *PheromoneField
	pending []pendingDeposit
	dropped uint64
}

// Deposit implements Depositor.
func (b *depositBuffer) Deposit(pos components.Vector, kind components.PheromoneKind) {
	idx, ok := b.field.dropIfOutOfRange(pos)
	if !ok {
		b.dropped++
		return
	}
	b.pending = append(b.pending, pendingDeposit{idx: idx, kind: kind})
}

// antChunk is a contiguous range of ants sharing one RNG.
type antChunk struct {
	start, end int
	rng        *rand.Rand
	buf        depositBuffer
}

// AntPass steps every ant once per tick. Ants are split into fixed-size
// chunks and each chunk is seeded from the caller's RNG in chunk order, so
// the outcome is identical whether chunks run sequentially or in parallel.
type AntPass struct {
	chunkSize int
	parallel  bool
	workers   int

	chunks []antChunk
}

// NewAntPass creates a pass with the given chunk size.
func NewAntPass(chunkSize int, parallel bool) *AntPass {
	if chunkSize < 1 {
		chunkSize = 256
	}
	return &AntPass{
		chunkSize: chunkSize,
		parallel:  parallel,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// Parallel reports whether chunks run concurrently.
func (p *AntPass) Parallel() bool { return p.parallel }

// SetParallel toggles concurrent chunk execution.
func (p *AntPass) SetParallel(on bool) { p.parallel = on }

// prepare sizes the chunk list for n ants and reseeds every chunk RNG.
func (p *AntPass) prepare(n int, field *PheromoneField, rng *rand.Rand) []antChunk {
	numChunks := (n + p.chunkSize - 1) / p.chunkSize
	for len(p.chunks) < numChunks {
		p.chunks = append(p.chunks, antChunk{rng: rand.New(rand.NewSource(1))})
	}

	chunks := p.chunks[:numChunks]
	for i := range chunks {
		c := &chunks[i]
		c.start = i * p.chunkSize
		c.end = min(c.start+p.chunkSize, n)
		c.rng.Seed(rng.Int63())
		c.buf.field = field
		c.buf.pending = c.buf.pending[:0]
		c.buf.dropped = 0
	}
	return chunks
}

// Run advances every ant by one pipeline step against field.
func (p *AntPass) Run(ants []*components.Ant, field *PheromoneField, k Kinematics, rng *rand.Rand) {
	if len(ants) == 0 {
		return
	}
	chunks := p.prepare(len(ants), field, rng)

	// Single chunk or sequential mode: deposit straight into the field
	if !p.parallel || len(chunks) == 1 {
		for i := range chunks {
			c := &chunks[i]
			for _, ant := range ants[c.start:c.end] {
				UpdateAnt(ant, k, field, c.rng)
			}
		}
		return
	}

	// At most workers chunks in flight
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := range chunks {
		c := &chunks[i]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			for _, ant := range ants[c.start:c.end] {
				UpdateAnt(ant, k, &c.buf, c.rng)
			}
		}()
	}
	wg.Wait()

	// Deposits are overwrites, so application order doesn't matter
	for i := range chunks {
		c := &chunks[i]
		for _, d := range c.buf.pending {
			field.depositAt(d.idx, d.kind)
		}
		field.dropped += c.buf.dropped
	}
}
