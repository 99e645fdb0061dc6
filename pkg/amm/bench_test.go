package amm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-engine/pkg/fixedpoint"
)

func BenchmarkGetAmountOut_NoAlloc(b *testing.B) {
	rIn := uint256.NewInt(13_451_234_567_890)
	rOut := uint256.NewInt(98_765_432_109_876)
	in := uint256.NewInt(1_000_000)
	dst := new(uint256.Int)
	t1 := new(uint256.Int)
	t2 := new(uint256.Int)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetAmountOut(dst, t1, t2, in, rIn, rOut, UniswapV2Fee)
	}
}

func BenchmarkQuote(b *testing.B) {
	rIn := fixedpoint.FromUint64(13_451_234_567_890, 18)
	rOut := fixedpoint.FromUint64(98_765_432_109_876, 18)
	in := fixedpoint.FromUint64(1_000_000, 18)
	p := Pricer{Fee: UniswapV2Fee}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Quote(in, rIn, rOut); err != nil {
			b.Fatal(err)
		}
	}
}
