package stdlib

import (
	"math/rand/v2"

	"github.com/purple-lang/purple/internal/arena"
	"github.com/purple-lang/purple/internal/errs"
)

// registerRandom installs a seedable PRNG: rand_seed(n) reseeds the
// generator deterministically, rand_float() returns a Number in
// [0,1), rand_int(n) returns a fixnum in [0,n). Seedable so a script
// can reproduce a sequence, unlike a bare crypto/rand draw.
func registerRandom(a *arena.Arena) error {
	src := rand.NewPCG(1, 1)
	rng := rand.New(src)

	if err := bindCFunc(a, "rand_seed", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		f, err := oneNumArg(a, args, "rand_seed")
		if err != nil {
			return arena.Nil, err
		}
		seed := uint64(int64(f))
		src.Seed(seed, seed^0x9e3779b97f4a7c15)
		return arena.Nil, nil
	}); err != nil {
		return err
	}

	if err := bindCFunc(a, "rand_float", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		return a.MakeNumber(rng.Float64())
	}); err != nil {
		return err
	}

	return bindCFunc(a, "rand_int", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		n, err := oneNumArg(a, args, "rand_int")
		if err != nil {
			return arena.Nil, err
		}
		bound := int64(n)
		if bound <= 0 {
			return arena.Nil, errs.New(errs.DomainError, "rand_int requires a positive bound, got %v", n)
		}
		return arena.Fixnum(rng.Int64N(bound)), nil
	})
}
