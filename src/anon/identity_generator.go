package anon

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/chameleon/src/names"
)

// IdentityGenerator derives synthetic first and last names from hash integers.
// Within one generator no two distinct hash integers get the same first name
// (or the same last name), and a hash integer always gets the name it got the
// first time.
//
// The generator is meant to be created once per anonymization run and shared by
// every handler of that run, so the same value gets the same identity in every
// column it appears in.
type IdentityGenerator struct {
	locale string
	seed   uint64

	first *nameAssigner
	last  *nameAssigner

	mu sync.Mutex // guards check-cache, sample, disambiguate, insert
}

// IdentityStats summarizes what a generator has handed out so far.
type IdentityStats struct {
	FirstNames         int
	LastNames          int
	SuffixedFirstNames int
	SuffixedLastNames  int
}

func NewIdentityGenerator(space *names.Space, seed uint64) *IdentityGenerator {
	return &IdentityGenerator{
		locale: space.Locale,
		seed:   seed,
		first:  newNameAssigner(space.First, seed),
		last:   newNameAssigner(space.Last, ^seed),
	}
}

func (g *IdentityGenerator) Locale() string {
	return g.locale
}

func (g *IdentityGenerator) FirstName(h *big.Int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.first.assign(h)
}

func (g *IdentityGenerator) LastName(h *big.Int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last.assign(h)
}

func (g *IdentityGenerator) Stats() IdentityStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return IdentityStats{
		FirstNames:         len(g.first.byHash),
		LastNames:          len(g.last.byHash),
		SuffixedFirstNames: g.first.suffixed,
		SuffixedLastNames:  g.last.suffixed,
	}
}

// nameAssigner is the identity cache for one name space (first or last).
type nameAssigner struct {
	pool []string
	seed uint64

	// hash integer (as big-endian bytes) -> assigned name
	byHash map[string]string
	// assigned name -> hash integer key that owns it
	owners map[string]string
	// base name -> next numeric suffix to try
	nextSuffix map[string]int

	suffixed int
}

func newNameAssigner(pool []string, seed uint64) *nameAssigner {
	return &nameAssigner{
		pool:       pool,
		seed:       seed,
		byHash:     make(map[string]string),
		owners:     make(map[string]string),
		nextSuffix: make(map[string]int),
	}
}

func (a *nameAssigner) assign(h *big.Int) string {
	key := string(h.Bytes())
	if name, ok := a.byHash[key]; ok {
		return name
	}

	base := a.sample(h)
	name := base
	if _, taken := a.owners[name]; taken {
		name = a.disambiguate(base)
		a.suffixed++
		log.Debugf("name %q already assigned, using variant %q", base, name)
	}

	a.byHash[key] = name
	a.owners[name] = key
	return name
}

// sample draws a candidate from the pool with a PCG seeded by the generator
// seed and the low 128 bits of h, so the candidate depends only on h.
func (a *nameAssigner) sample(h *big.Int) string {
	low := new(big.Int).And(h, mask64).Uint64()
	high := new(big.Int).And(new(big.Int).Rsh(h, 64), mask64).Uint64()
	rng := rand.New(rand.NewPCG(low^a.seed, high))
	return a.pool[rng.IntN(len(a.pool))]
}

var mask64 = new(big.Int).SetUint64(^uint64(0))

// disambiguate returns the next unused base+N, N starting at 2. The counter
// only grows, so the loop ends once it passes every variant already taken.
func (a *nameAssigner) disambiguate(base string) string {
	n, ok := a.nextSuffix[base]
	if !ok {
		n = 2
	}
	for {
		candidate := fmt.Sprintf("%s%d", base, n)
		n++
		if _, taken := a.owners[candidate]; !taken {
			a.nextSuffix[base] = n
			return candidate
		}
	}
}
