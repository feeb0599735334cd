package field

import (
	"crypto/rand"
	"testing"
)

func randomElements(b *testing.B, n int) []FE {
	b.Helper()
	out := make([]FE, n)
	for i := range out {
		fe, err := Random(rand.Reader)
		if err != nil {
			b.Fatal(err)
		}
		out[i] = fe
	}
	return out
}

// BenchmarkMul benchmarks the wide-multiply path.
func BenchmarkMul(b *testing.B) {
	elts := randomElements(b, 1024)

	b.ResetTimer()
	acc := One()
	for i := 0; i < b.N; i++ {
		acc = acc.Mul(elts[i%len(elts)])
	}
	benchSink = acc
}

// BenchmarkMulKaratsuba benchmarks the pure-uint64 Karatsuba path.
func BenchmarkMulKaratsuba(b *testing.B) {
	elts := randomElements(b, 1024)

	b.ResetTimer()
	acc := One()
	for i := 0; i < b.N; i++ {
		acc = acc.MulKaratsuba(elts[i%len(elts)])
	}
	benchSink = acc
}

// BenchmarkRecip benchmarks Fermat inversion.
func BenchmarkRecip(b *testing.B) {
	elts := randomElements(b, 1024)

	b.ResetTimer()
	acc := One()
	for i := 0; i < b.N; i++ {
		acc = elts[i%len(elts)].Recip()
	}
	benchSink = acc
}

// benchSink keeps the compiler from discarding benchmark results.
var benchSink FE
