package stdlib

import (
	"time"

	"github.com/purple-lang/purple/internal/arena"
)

// registerTime installs `now` (Unix seconds as a Number, since a
// fixnum cannot hold current epoch seconds with sub-second
// resolution without truncating it) and `sleep_ms`.
func registerTime(a *arena.Arena) error {
	if err := bindCFunc(a, "now", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		return a.MakeNumber(float64(time.Now().UnixNano()) / 1e9)
	}); err != nil {
		return err
	}

	return bindCFunc(a, "sleep_ms", func(a *arena.Arena, args arena.Value) (arena.Value, error) {
		ms, err := oneNumArg(a, args, "sleep_ms")
		if err != nil {
			return arena.Nil, err
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return arena.Nil, nil
	})
}
