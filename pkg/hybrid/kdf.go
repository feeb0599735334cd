package hybrid

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// generateKeys expands an ECDH shared secret, a per-message salt, and a
// domain-separation tweak into the three keys this scheme needs, via a
// single SHAKE-256 XOF stream. Using one XOF for all three keys (rather
// than three independent hashes) means a length-extension-style confusion
// between them is structurally impossible: they are disjoint windows of
// one stream, ordered enc_key, enc_iv, mac_key.
func generateKeys(secretInput, salt, tweak []byte) (encKey [SKeyLen]byte, encIV [SIVLen]byte, macKey [MacKeyLen]byte) {
	xof := sha3.NewShake256()
	xof.Write(secretInput)
	xof.Write(salt)
	xof.Write(tweak)

	var buf [SKeyLen + SIVLen + MacKeyLen]byte
	xof.Read(buf[:])

	copy(encKey[:], buf[:SKeyLen])
	copy(encIV[:], buf[SKeyLen:SKeyLen+SIVLen])
	copy(macKey[:], buf[SKeyLen+SIVLen:])
	return
}

// mac computes SHA3-256(be_u64(len(key)) || key || val). Prefixing the key
// with its own length prevents a key/val boundary-shifting collision (key1
// || val1 == key2 || val2 for different splits) from producing the same
// digest.
func mac(key, val []byte) [MacOutLen]byte {
	h := sha3.New256()
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(key)))
	h.Write(lenBuf[:])
	h.Write(key)
	h.Write(val)
	var out [MacOutLen]byte
	copy(out[:], h.Sum(nil))
	return out
}
