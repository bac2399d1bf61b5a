package hashsig

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/bwesterb/byteswriter"
)

// sigMagic tags the canonical signature encoding so a corrupt or
// foreign blob is rejected at the first four bytes instead of
// partway through unmarshaling a signature of 48 KiB or more.
var sigMagic = [4]byte{'H', 'S', 'G', '1'}

// MarshalBinary writes pk as OTSBits*2 concatenated digests.
func (pk *OTSPublicKey) MarshalBinary() []byte {
	buf := make([]byte, OTSBits*2*N)
	for j := 0; j < OTSBits; j++ {
		copy(buf[j*2*N:], pk.P[j][0][:])
		copy(buf[j*2*N+N:], pk.P[j][1][:])
	}
	return buf
}

func unmarshalOTSPublicKey(buf []byte) (*OTSPublicKey, Error) {
	if len(buf) != OTSBits*2*N {
		return nil, errorf(KindMalformedSignature, "ots public key: expected %d bytes, got %d", OTSBits*2*N, len(buf))
	}
	pk := new(OTSPublicKey)
	for j := 0; j < OTSBits; j++ {
		copy(pk.P[j][0][:], buf[j*2*N:])
		copy(pk.P[j][1][:], buf[j*2*N+N:])
	}
	return pk, nil
}

// MarshalBinary writes sig as OTSBits concatenated digests.
func (sig *OTSSignature) MarshalBinary() []byte {
	buf := make([]byte, OTSBits*N)
	for j := 0; j < OTSBits; j++ {
		copy(buf[j*N:], sig.S[j][:])
	}
	return buf
}

func unmarshalOTSSignature(buf []byte) (*OTSSignature, Error) {
	if len(buf) != OTSBits*N {
		return nil, errorf(KindMalformedSignature, "ots signature: expected %d bytes, got %d", OTSBits*N, len(buf))
	}
	sig := new(OTSSignature)
	for j := 0; j < OTSBits; j++ {
		copy(sig.S[j][:], buf[j*N:])
	}
	return sig, nil
}

// qSignatureSize is the encoded size of a QSignature whose path has
// exactly depth entries.
func qSignatureSize(depth uint8) int {
	return 4 + OTSBits*2*N + OTSBits*N + int(depth)*N
}

func writeQSignature(w *byteswriter.Writer, sig *QSignature) error {
	if err := binary.Write(w, binary.LittleEndian, sig.Index); err != nil {
		return err
	}
	if _, err := w.Write(sig.PublicKey.MarshalBinary()); err != nil {
		return err
	}
	if _, err := w.Write(sig.OTSSig.MarshalBinary()); err != nil {
		return err
	}
	for _, node := range sig.Path {
		if _, err := w.Write(node[:]); err != nil {
			return err
		}
	}
	return nil
}

func readQSignature(buf []byte, depth uint8) (*QSignature, []byte, Error) {
	want := qSignatureSize(depth)
	if len(buf) < want {
		return nil, nil, errorf(KindMalformedSignature, "q-indexed signature: expected at least %d bytes, got %d", want, len(buf))
	}
	index := binary.LittleEndian.Uint32(buf[:4])
	off := 4

	pk, err := unmarshalOTSPublicKey(buf[off : off+OTSBits*2*N])
	if err != nil {
		return nil, nil, err
	}
	off += OTSBits * 2 * N

	otsSig, err := unmarshalOTSSignature(buf[off : off+OTSBits*N])
	if err != nil {
		return nil, nil, err
	}
	off += OTSBits * N

	path := make([]Digest, depth)
	for i := range path {
		copy(path[i][:], buf[off:])
		off += N
	}

	return &QSignature{Index: index, PublicKey: *pk, OTSSig: *otsSig, Path: path}, buf[off:], nil
}

// MarshalBinary writes pk as its 32-byte root followed by a one-byte
// depth.
func (pk *QPublicKey) MarshalBinary() []byte {
	buf := make([]byte, N+1)
	copy(buf, pk.Root[:])
	buf[N] = pk.Depth
	return buf
}

func unmarshalQPublicKey(buf []byte) (*QPublicKey, Error) {
	if len(buf) != N+1 {
		return nil, errorf(KindMalformedSignature, "q-indexed public key: expected %d bytes, got %d", N+1, len(buf))
	}
	pk := new(QPublicKey)
	copy(pk.Root[:], buf[:N])
	pk.Depth = buf[N]
	return pk, nil
}

// MarshalBinary encodes the full two-level signature: magic, the two
// depths, the inner signature, the inner public key, then the outer
// signature. The depths are carried in the blob itself because
// verify() only receives a root and no other scheme parameters.
func (sig *MerkleSignature) MarshalBinary() ([]byte, Error) {
	dTop := uint8(len(sig.TopSig.Path))
	dBot := uint8(len(sig.BotSig.Path))
	size := len(sigMagic) + 2 + qSignatureSize(dBot) + (N + 1) + qSignatureSize(dTop)

	buf := make([]byte, size)
	w := byteswriter.NewWriter(buf)
	if _, err := w.Write(sigMagic[:]); err != nil {
		return nil, wrapErrorf(KindIoError, err, "encode signature")
	}
	if _, err := w.Write([]byte{dTop, dBot}); err != nil {
		return nil, wrapErrorf(KindIoError, err, "encode signature")
	}
	if err := writeQSignature(w, &sig.BotSig); err != nil {
		return nil, wrapErrorf(KindIoError, err, "encode inner signature")
	}
	if _, err := w.Write(sig.BotPublic.MarshalBinary()); err != nil {
		return nil, wrapErrorf(KindIoError, err, "encode inner public key")
	}
	if err := writeQSignature(w, &sig.TopSig); err != nil {
		return nil, wrapErrorf(KindIoError, err, "encode outer signature")
	}
	return buf, nil
}

// UnmarshalMerkleSignature decodes a signature written by
// MarshalBinary.
func UnmarshalMerkleSignature(buf []byte) (*MerkleSignature, Error) {
	if len(buf) < len(sigMagic)+2 {
		return nil, errorf(KindMalformedSignature, "signature too short")
	}
	var magic [4]byte
	copy(magic[:], buf[:4])
	if magic != sigMagic {
		return nil, errorf(KindMalformedSignature, "bad magic %x", magic)
	}
	dTop, dBot := buf[4], buf[5]
	rest := buf[6:]

	botSig, rest, err := readQSignature(rest, dBot)
	if err != nil {
		return nil, err
	}
	if len(rest) < N+1 {
		return nil, errorf(KindMalformedSignature, "signature truncated before inner public key")
	}
	botPub, err := unmarshalQPublicKey(rest[:N+1])
	if err != nil {
		return nil, err
	}
	rest = rest[N+1:]

	topSig, rest, err := readQSignature(rest, dTop)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errorf(KindMalformedSignature, "%d trailing bytes after signature", len(rest))
	}

	return &MerkleSignature{BotSig: *botSig, BotPublic: *botPub, TopSig: *topSig}, nil
}

// EncodePublicKeyHex renders a MerklePublicKey's root as 64 lowercase
// hex characters.
func EncodePublicKeyHex(pk *MerklePublicKey) string {
	return hex.EncodeToString(pk.Root[:])
}

// DecodePublicKeyHex parses exactly what EncodePublicKeyHex produces.
// Depths are not recoverable from the hex form alone (it is kept to
// the bare 64 hex characters); callers that only have a root, such as
// the verifier binding, get depths from the signature blob itself.
func DecodePublicKeyHex(s string) (Digest, Error) {
	var root Digest
	if len(s) != 2*N {
		return root, errorf(KindMalformedPublicKey, "expected %d hex characters, got %d", 2*N, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return root, wrapErrorf(KindMalformedPublicKey, err, "invalid hex")
	}
	copy(root[:], raw)
	return root, nil
}
