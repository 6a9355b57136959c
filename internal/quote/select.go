package quote

import "math/rand/v2"

// NewRand returns a randomly seeded source. Callers obtain one per process.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec
}

// Choose picks one quote uniformly at random.
func Choose(r *rand.Rand, quotes []Quote) (Quote, error) {
	if len(quotes) == 0 {
		return Quote{}, &Error{Kind: KindEmptyCollection, Op: "choose"}
	}
	return quotes[r.IntN(len(quotes))], nil
}
