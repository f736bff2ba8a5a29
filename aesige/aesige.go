// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package aesige implements the encryption scheme Telegram Desktop uses
// for its local files: AES-256 in IGE mode, with the key and IV derived
// from a master key and a per-blob message key using the old MTProto
// SHA-1 window construction.
package aesige

import (
	"crypto/aes"
	"crypto/sha1"
	"fmt"

	"github.com/gotd/ige"
)

const (
	// MessageKeyLength is the length of the message key prefixed to every
	// encrypted blob. It doubles as the integrity check: it must equal
	// the first 16 bytes of the SHA-1 of the decrypted plaintext.
	MessageKeyLength = 16
	// LocalKeyLength is the length of the master key and of per-DC auth keys.
	LocalKeyLength = 256

	// kdfOffset shifts the key windows used in the derivation. Local
	// files always use the receive-side offset of the old MTProto scheme.
	kdfOffset = 8

	minKeyLength = kdfOffset + 128
)

// deriveKeyIV computes the AES key and IV from the master key and the
// message key. Four SHA-1 hashes over fixed windows of the master key
// mixed with the message key are sliced and concatenated in a fixed
// pattern. The construction predates HKDF and must match it exactly.
func deriveKeyIV(key, msgKey []byte) (aesKey, aesIV [32]byte) {
	x := kdfOffset

	var data [48]byte
	copy(data[:16], msgKey)
	copy(data[16:48], key[x:x+32])
	sha1A := sha1.Sum(data[:])

	copy(data[:16], key[x+32:x+48])
	copy(data[16:32], msgKey)
	copy(data[32:48], key[x+48:x+64])
	sha1B := sha1.Sum(data[:])

	copy(data[:32], key[x+64:x+96])
	copy(data[32:48], msgKey)
	sha1C := sha1.Sum(data[:])

	copy(data[:16], msgKey)
	copy(data[16:48], key[x+96:x+128])
	sha1D := sha1.Sum(data[:])

	copy(aesKey[:8], sha1A[:8])
	copy(aesKey[8:20], sha1B[8:20])
	copy(aesKey[20:32], sha1C[4:16])

	copy(aesIV[:12], sha1A[8:20])
	copy(aesIV[12:20], sha1B[:8])
	copy(aesIV[20:24], sha1C[16:20])
	copy(aesIV[24:32], sha1D[:8])
	return
}

// Decrypt decrypts a blob consisting of a 16-byte message key followed
// by the AES-IGE ciphertext, then verifies that the SHA-1 of the
// plaintext starts with the message key. A failed check is reported as
// ErrIntegrityCheckFailed and is indistinguishable from a wrong key:
// callers must not present it as specifically one or the other.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrKeyTooShort, len(key))
	}
	if len(ciphertext) < MessageKeyLength+aes.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertextTooShort, len(ciphertext))
	}
	msgKey := ciphertext[:MessageKeyLength]
	encrypted := ciphertext[MessageKeyLength:]
	if len(encrypted)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotBlockAligned, len(encrypted))
	}

	aesKey, aesIV := deriveKeyIV(key, msgKey)
	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(encrypted))
	ige.DecryptBlocks(block, aesIV[:], plaintext, encrypted)

	digest := sha1.Sum(plaintext)
	if [MessageKeyLength]byte(digest[:MessageKeyLength]) != [MessageKeyLength]byte(msgKey) {
		return nil, ErrIntegrityCheckFailed
	}
	return plaintext, nil
}

// Encrypt is the mirror of Decrypt: the message key is the first 16
// bytes of the SHA-1 of the plaintext, which must be block-aligned
// (use Pad). The pipeline itself never encrypts; this exists for tests
// and fixture tooling.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrKeyTooShort, len(key))
	}
	if len(plaintext) == 0 || len(plaintext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotBlockAligned, len(plaintext))
	}
	digest := sha1.Sum(plaintext)
	msgKey := digest[:MessageKeyLength]

	aesKey, aesIV := deriveKeyIV(key, msgKey)
	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, MessageKeyLength+len(plaintext))
	copy(out, msgKey)
	ige.EncryptBlocks(block, aesIV[:], out[MessageKeyLength:], plaintext)
	return out, nil
}
