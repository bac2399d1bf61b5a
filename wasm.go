//go:build js && wasm

package hashsig

import "syscall/js"

// RegisterWasmVerifier exposes VerifyFile to the browser as a global
// JavaScript function: it takes the signed file's bytes, the signature
// bytes, and a 64-hex public key, and returns one of "valid",
// "invalid_signature", "cant_parse_signature" or "invalid_public_key"
// -- never throws.
func RegisterWasmVerifier(name string) {
	js.Global().Set(name, js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) != 3 {
			return string(ResultCantParseSignature)
		}
		fileBytes := jsBytes(args[0])
		sigBytes := jsBytes(args[1])
		pkHex := args[2].String()
		return string(VerifyFile(fileBytes, sigBytes, pkHex))
	}))
}

// jsBytes copies a JS Uint8Array into a Go byte slice.
func jsBytes(v js.Value) []byte {
	length := v.Get("length").Int()
	out := make([]byte, length)
	js.CopyBytesToGo(out, v)
	return out
}
