package hashsig

import (
	"bytes"
	"testing"
)

func TestOTSPublicKeyMarshalRoundTrip(t *testing.T) {
	var seed Digest
	seed[0] = 1
	_, pk := GenerateOTSKeyPair(seed)

	buf := pk.MarshalBinary()
	if len(buf) != OTSBits*2*N {
		t.Fatalf("expected %d bytes, got %d", OTSBits*2*N, len(buf))
	}

	pk2, err := unmarshalOTSPublicKey(buf)
	if err != nil {
		t.Fatalf("unmarshalOTSPublicKey: %v", err)
	}
	if pk2.P != pk.P {
		t.Fatalf("round-tripped OTS public key does not match the original")
	}
}

func TestOTSPublicKeyUnmarshalRejectsWrongLength(t *testing.T) {
	_, err := unmarshalOTSPublicKey(make([]byte, 10))
	if err == nil {
		t.Fatalf("expected an error for a truncated OTS public key")
	}
	if err.Kind() != KindMalformedSignature {
		t.Fatalf("expected KindMalformedSignature, got %v", err.Kind())
	}
}

func TestMerkleSignatureMarshalRoundTrip(t *testing.T) {
	var seed Digest
	seed[0] = 7
	kp, pk := NewMerkleKeyPair(seed, 3, 2)

	msg := []byte("round trip")
	sig := kp.SignAt(1, hash(msg))

	buf, err := sig.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	sig2, err := UnmarshalMerkleSignature(buf)
	if err != nil {
		t.Fatalf("UnmarshalMerkleSignature: %v", err)
	}

	if !MerkleVerify(pk, msg, sig2) {
		t.Fatalf("round-tripped signature failed to verify")
	}

	buf2, err := sig2.MarshalBinary()
	if err != nil {
		t.Fatalf("re-marshaling round-tripped signature: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Fatalf("re-encoding a decoded signature did not reproduce the original bytes")
	}
}

func TestUnmarshalMerkleSignatureRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 16)
	_, err := UnmarshalMerkleSignature(buf)
	if err == nil {
		t.Fatalf("expected an error for a bad magic value")
	}
	if err.Kind() != KindMalformedSignature {
		t.Fatalf("expected KindMalformedSignature, got %v", err.Kind())
	}
}

func TestUnmarshalMerkleSignatureRejectsTruncation(t *testing.T) {
	var seed Digest
	seed[0] = 9
	kp, _ := NewMerkleKeyPair(seed, 2, 2)
	sig := kp.SignAt(0, hash([]byte("x")))

	buf, err := sig.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	_, uerr := UnmarshalMerkleSignature(buf[:len(buf)-1])
	if uerr == nil {
		t.Fatalf("expected an error for a truncated signature")
	}
}

func TestPublicKeyHexRoundTrip(t *testing.T) {
	var seed Digest
	seed[0] = 3
	_, pk := NewMerkleKeyPair(seed, 2, 2)

	encoded := EncodePublicKeyHex(pk)
	if len(encoded) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(encoded))
	}

	decoded, err := DecodePublicKeyHex(encoded)
	if err != nil {
		t.Fatalf("DecodePublicKeyHex: %v", err)
	}
	if decoded != pk.Root {
		t.Fatalf("decoded root does not match the original")
	}
}

func TestDecodePublicKeyHexRejectsWrongLength(t *testing.T) {
	_, err := DecodePublicKeyHex("abcd")
	if err == nil {
		t.Fatalf("expected an error for a too-short public key")
	}
	if err.Kind() != KindMalformedPublicKey {
		t.Fatalf("expected KindMalformedPublicKey, got %v", err.Kind())
	}
}

func TestDecodePublicKeyHexRejectsNonHex(t *testing.T) {
	bad := make([]byte, 64)
	for i := range bad {
		bad[i] = 'z'
	}
	_, err := DecodePublicKeyHex(string(bad))
	if err == nil {
		t.Fatalf("expected an error for a non-hex public key")
	}
}
