package field

import (
	"fmt"
	"math/big"
)

func init() {
	selfTest()
}

// selfTest verifies, once at package init, that PrimeOrder is actually
// prime. N and offsetBit are compile-time constants chosen by whoever
// configures this field; a typo there (a wrong N or offsetBit) could
// silently turn every operation in this package into arithmetic over a
// composite ring, with no further warning. math/big.ProbablyPrime at 40
// rounds is the standard library's Baillie-PSW-based primality check; its
// false-positive rate is astronomically below any other failure mode in
// this package.
func selfTest() {
	p := new(big.Int).SetUint64(PrimeOrder)
	if !p.ProbablyPrime(40) {
		panic(fmt.Sprintf("field: PrimeOrder %d is not prime", PrimeOrder))
	}
	if feValMax < fullBitsMask {
		panic("field: feValMax computed smaller than fullBitsMask")
	}
}
