package plan_impl

import "github.com/JyotinderSingh/dropexec/trace"

// DefaultSecondaryHashFactor sets the hash join's in-memory bucket modulus
// relative to its partition count.
const DefaultSecondaryHashFactor = 1.5

// Options tune the physical operators chosen by the planners.
type Options struct {
	// BufferBudget is the chunk size of block nested loop joins, in blocks.
	// Zero derives it from the buffers available when planning.
	BufferBudget int
	// HashPartitions fixes the hash join partition count. Zero derives it
	// from the available buffers.
	HashPartitions int
	// SecondaryHashFactor defaults to DefaultSecondaryHashFactor.
	SecondaryHashFactor float64
	Tracer              trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.SecondaryHashFactor <= 0 {
		o.SecondaryHashFactor = DefaultSecondaryHashFactor
	}
	o.Tracer = trace.OrNoop(o.Tracer)
	return o
}
