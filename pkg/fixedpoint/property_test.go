package fixedpoint_test

import (
	"math/big"
	"testing"

	"pgregory.net/rapid"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

func drawAmount(t *rapid.T, label string) fixedpoint.Amount {
	b := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, label+"_raw")
	decimals := rapid.Uint8Range(0, 36).Draw(t, label+"_decimals")
	return fixedpoint.MustNew(new(big.Int).SetBytes(b), decimals)
}

func TestFormatParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawAmount(t, "a")

		for _, s := range []string{fixedpoint.Format(a), fixedpoint.FormatTrimmed(a)} {
			back, err := fixedpoint.Parse(s, a.Decimals())
			if err != nil {
				t.Fatalf("parse %q: %v", s, err)
			}
			if eq, _ := back.Equal(a); !eq {
				t.Fatalf("round trip of %q: got raw %s want %s", s, back.Raw(), a.Raw())
			}
		}
	})
}

func TestRescaleUpDownIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Uint64().Draw(t, "raw")
		from := rapid.Uint8Range(0, 18).Draw(t, "from")
		to := rapid.Uint8Range(from, 36).Draw(t, "to")
		a := fixedpoint.FromUint64(raw, from)

		up, err := a.Rescale(to)
		if err != nil {
			t.Fatalf("rescale up: %v", err)
		}
		down, err := up.Rescale(from)
		if err != nil {
			t.Fatalf("rescale down: %v", err)
		}
		if eq, _ := down.Equal(a); !eq {
			t.Fatalf("rescale %d->%d->%d changed %s into %s", from, to, from, a, down)
		}
	})
}

func TestDivFloorNeverRoundsUp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawAmount(t, "a")
		d := new(big.Int).SetUint64(rapid.Uint64Range(1, 1<<62).Draw(t, "divisor"))

		q, err := a.DivFloor(d)
		if err != nil {
			t.Fatalf("div: %v", err)
		}
		back := new(big.Int).Mul(q.Raw(), d)
		if back.Cmp(a.Raw()) > 0 {
			t.Fatalf("floor(%s/%s)*%s = %s exceeds dividend", a.Raw(), d, d, back)
		}
	})
}
