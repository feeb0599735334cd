// Package hybrid implements the ephemeral-Curve25519 / SHAKE-256-KDF /
// AES-256-CTR / SHA3-256-MAC hybrid encryption scheme used to protect a
// client's seed and blinded counter vector in transit to each TR. It
// provides confidentiality and integrity against a passive or
// message-modifying adversary; it does not defend against chosen-
// ciphertext attacks beyond the MAC check, and it makes no attempt at
// side-channel resistance beyond what pkg/field and the constant-time MAC
// comparison already provide.
package hybrid

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/nmathewson/privcount-shamir/pkg/perrors"
	"github.com/nmathewson/privcount-shamir/pkg/security"
)

// Field widths, all in bytes, fixed by the wire format.
const (
	SaltLen          = 16
	SKeyLen          = 32
	SIVLen           = 16
	MacKeyLen        = 32
	MacOutLen        = 32
	PKPublicLen      = 32
	PKSecretLen      = 32
	SigningPublicLen = 32

	// EncryptedOverhead is the number of bytes a ciphertext carries beyond
	// its plaintext: the ephemeral public key, the salt, and the MAC.
	EncryptedOverhead = PKPublicLen + SaltLen + MacOutLen // 80
)

// Encryptor encrypts to one recipient TR, identified by its Curve25519
// public key and (as an opaque 32-byte domain-separation tag, not used for
// any signature operation here) its signing public key.
type Encryptor struct {
	pubKey     [PKPublicLen]byte
	signingKey [SigningPublicLen]byte
}

// NewEncryptor builds an Encryptor for the recipient identified by pubKey
// and signingKey.
func NewEncryptor(pubKey, signingKey [32]byte) *Encryptor {
	return &Encryptor{pubKey: pubKey, signingKey: signingKey}
}

// Decryptor decrypts ciphertexts addressed to one recipient, identified by
// its Curve25519 secret key and its own signing public key.
type Decryptor struct {
	secretKey  [PKSecretLen]byte
	signingKey [SigningPublicLen]byte
}

// NewDecryptor builds a Decryptor for the holder of secretKey, whose
// signing public key is signingKey.
func NewDecryptor(secretKey, signingKey [32]byte) *Decryptor {
	return &Decryptor{secretKey: secretKey, signingKey: signingKey}
}

// Encrypt seals plaintext under a fresh ephemeral Curve25519 keypair drawn
// from rng, binding the ciphertext to tweak (a domain-separation constant
// distinguishing, e.g., seed ciphertexts from counter-vector ciphertexts).
// The output layout is:
//
//	[32B ephemeral public key][16B salt][len(plaintext)B ciphertext][32B MAC]
func (e *Encryptor) Encrypt(plaintext, tweak []byte, rng io.Reader) ([]byte, error) {
	const op = "hybrid.Encrypt"

	ephemeralSecret, err := GenerateCurve25519SecretKey(rng)
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}
	defer security.Zero(ephemeralSecret[:])

	ephemeralPublic, err := DerivePublicKey(ephemeralSecret)
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}

	shared, err := curve25519.X25519(ephemeralSecret[:], e.pubKey[:])
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}
	defer security.Zero(shared)

	var salt [SaltLen]byte
	if _, err := io.ReadFull(rng, salt[:]); err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}

	secretInput := append(append([]byte{}, shared...), e.signingKey[:]...)
	defer security.Zero(secretInput)
	encKey, encIV, macKey := generateKeys(secretInput, salt[:], tweak)
	defer security.Zero(encKey[:])
	defer security.Zero(macKey[:])

	ciphertext := make([]byte, len(plaintext))
	if err := ctrCrypt(encKey, encIV, plaintext, ciphertext); err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}

	out := make([]byte, 0, EncryptedOverhead+len(plaintext))
	out = append(out, ephemeralPublic[:]...)
	out = append(out, salt[:]...)
	out = append(out, ciphertext...)

	tag := mac(macKey[:], out)
	out = append(out, tag[:]...)
	return out, nil
}

// Decrypt opens a ciphertext produced by Encrypt with a matching tweak,
// failing with a perrors.Error of Kind DecryptionFailure for every
// failure mode — a truncated ciphertext, a MAC mismatch, or a tweak
// mismatch are all reported identically, by design: this function does
// not tell a caller (or, transitively, an attacker probing it) which one
// occurred. Callers that need to distinguish which logical segment
// failed (e.g. a client's seed vs. its counter vector) tag the error
// themselves with perrors.WrapSegment; this function has no notion of
// segments.
func (d *Decryptor) Decrypt(ciphertext, tweak []byte) ([]byte, error) {
	const op = "hybrid.Decrypt"

	if len(ciphertext) < EncryptedOverhead {
		return nil, perrors.New(perrors.DecryptionFailure, op)
	}

	ephemeralPublic := ciphertext[:PKPublicLen]
	salt := ciphertext[PKPublicLen : PKPublicLen+SaltLen]
	body := ciphertext[:len(ciphertext)-MacOutLen]
	ct := ciphertext[PKPublicLen+SaltLen : len(ciphertext)-MacOutLen]
	receivedTag := ciphertext[len(ciphertext)-MacOutLen:]

	shared, err := curve25519.X25519(d.secretKey[:], ephemeralPublic)
	if err != nil {
		return nil, perrors.New(perrors.DecryptionFailure, op)
	}
	defer security.Zero(shared)

	secretInput := append(append([]byte{}, shared...), d.signingKey[:]...)
	defer security.Zero(secretInput)
	encKey, encIV, macKey := generateKeys(secretInput, salt, tweak)
	defer security.Zero(encKey[:])
	defer security.Zero(macKey[:])

	expectedTag := mac(macKey[:], body)
	if !security.ConstantTimeCompare(expectedTag[:], receivedTag) {
		return nil, perrors.New(perrors.DecryptionFailure, op)
	}

	plaintext := make([]byte, len(ct))
	if err := ctrCrypt(encKey, encIV, ct, plaintext); err != nil {
		return nil, perrors.New(perrors.DecryptionFailure, op)
	}
	return plaintext, nil
}

// ctrCrypt runs AES-256-CTR over src into dst (they may overlap
// identically, as stdlib cipher.Stream implementations require). Encrypt
// and Decrypt are the same CTR operation applied twice.
func ctrCrypt(key [SKeyLen]byte, iv [SIVLen]byte, src, dst []byte) error {
	if len(iv) != aes.BlockSize {
		return perrors.New(perrors.Internal, "hybrid.ctrCrypt")
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	stream := cipher.NewCTR(block, iv[:])
	stream.XORKeyStream(dst, src)
	return nil
}
