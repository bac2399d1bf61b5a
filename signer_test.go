package hashsig

import (
	"path/filepath"
	"testing"
)

func TestSignerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.json")

	var seed Digest
	seed[0] = 1
	ctr, err := CreatePrivateKeyContainer(path, seed, 3, 2)
	if err != nil {
		t.Fatalf("CreatePrivateKeyContainer: %v", err)
	}
	signer := NewSigner(ctr)
	pk := signer.PublicKey()
	pkHex := EncodePublicKeyHex(pk)

	msg := []byte("the file contents being signed")
	sig, err := signer.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sigBytes, merr := sig.MarshalBinary()
	if merr != nil {
		t.Fatalf("MarshalBinary: %v", merr)
	}
	if err := signer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := VerifyFile(msg, sigBytes, pkHex); got != ResultValid {
		t.Fatalf("expected %q, got %q", ResultValid, got)
	}
	if got := VerifyFile([]byte("tampered"), sigBytes, pkHex); got != ResultInvalidSignature {
		t.Fatalf("expected %q, got %q", ResultInvalidSignature, got)
	}

	tamperedSig := append([]byte(nil), sigBytes...)
	tamperedSig[len(tamperedSig)-1] ^= 0xff
	if got := VerifyFile(msg, tamperedSig, pkHex); got != ResultInvalidSignature {
		t.Fatalf("expected %q, got %q", ResultInvalidSignature, got)
	}

	var wrongSeed Digest
	wrongSeed[0] = 2
	wrongKP, _ := NewMerkleKeyPair(wrongSeed, 3, 2)
	wrongHex := EncodePublicKeyHex(&MerklePublicKey{Root: wrongKP.top.PublicKey().Root, DTop: 3, DBot: 2})
	if got := VerifyFile(msg, sigBytes, wrongHex); got != ResultInvalidSignature {
		t.Fatalf("expected %q, got %q", ResultInvalidSignature, got)
	}

	if got := VerifyFile(msg, []byte("not a signature"), pkHex); got != ResultCantParseSignature {
		t.Fatalf("expected %q for garbage signature bytes, got %q", ResultCantParseSignature, got)
	}
	if got := VerifyFile(msg, sigBytes, "not-hex"); got != ResultInvalidPublicKey {
		t.Fatalf("expected %q for a malformed public key, got %q", ResultInvalidPublicKey, got)
	}
}

func TestSignerExhaustsLeafBudget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.json")

	var seed Digest
	ctr, err := CreatePrivateKeyContainer(path, seed, 1, 1)
	if err != nil {
		t.Fatalf("CreatePrivateKeyContainer: %v", err)
	}
	signer := NewSigner(ctr)
	defer signer.Close()

	for i := 0; i < 2; i++ {
		if _, err := signer.Sign([]byte("msg")); err != nil {
			t.Fatalf("signature %d should succeed: %v", i, err)
		}
	}

	_, err = signer.Sign([]byte("one too many"))
	if err == nil {
		t.Fatalf("expected leaf budget exhaustion on the third signature")
	}
	if err.Kind() != KindLeafBudgetExhausted {
		t.Fatalf("expected KindLeafBudgetExhausted, got %v", err.Kind())
	}
}

func TestSignerPersistsIndexAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.json")

	var seed Digest
	ctr, err := CreatePrivateKeyContainer(path, seed, 3, 2)
	if err != nil {
		t.Fatalf("CreatePrivateKeyContainer: %v", err)
	}
	signer := NewSigner(ctr)
	if _, err := signer.Sign([]byte("first")); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := signer.Sign([]byte("second")); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := signer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctr2, err := OpenPrivateKeyContainer(path)
	if err != nil {
		t.Fatalf("OpenPrivateKeyContainer: %v", err)
	}
	signer2 := NewSigner(ctr2)
	defer signer2.Close()

	sig, err := signer2.Sign([]byte("third"))
	if err != nil {
		t.Fatalf("Sign after reopen: %v", err)
	}
	if sig.TopIndex() != 2 {
		t.Fatalf("expected the reopened signer to continue from index 2, got %d", sig.TopIndex())
	}
}
