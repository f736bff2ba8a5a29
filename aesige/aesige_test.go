// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package aesige_test

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/util/random"

	"go.mau.fi/tdesktop/aesige"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := random.Bytes(aesige.LocalKeyLength)
	plaintext := random.Bytes(4 * aes.BlockSize)

	ciphertext, err := aesige.Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.Len(t, ciphertext, aesige.MessageKeyLength+len(plaintext))
	assert.NotEqual(t, plaintext, ciphertext[aesige.MessageKeyLength:])

	decrypted, err := aesige.Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key := random.Bytes(aesige.LocalKeyLength)
	ciphertext, err := aesige.Encrypt(random.Bytes(2*aes.BlockSize), key)
	require.NoError(t, err)

	wrongKey := random.Bytes(aesige.LocalKeyLength)
	_, err = aesige.Decrypt(ciphertext, wrongKey)
	assert.ErrorIs(t, err, aesige.ErrIntegrityCheckFailed)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key := random.Bytes(aesige.LocalKeyLength)
	ciphertext, err := aesige.Encrypt(random.Bytes(2*aes.BlockSize), key)
	require.NoError(t, err)

	ciphertext[aesige.MessageKeyLength] ^= 0x01
	_, err = aesige.Decrypt(ciphertext, key)
	assert.ErrorIs(t, err, aesige.ErrIntegrityCheckFailed)
}

func TestDecrypt_InvalidInput(t *testing.T) {
	key := random.Bytes(aesige.LocalKeyLength)
	_, err := aesige.Decrypt(random.Bytes(8), key)
	assert.ErrorIs(t, err, aesige.ErrCiphertextTooShort)

	_, err = aesige.Decrypt(random.Bytes(aesige.MessageKeyLength+aes.BlockSize+1), key)
	assert.ErrorIs(t, err, aesige.ErrNotBlockAligned)

	_, err = aesige.Decrypt(random.Bytes(aesige.MessageKeyLength+aes.BlockSize), random.Bytes(64))
	assert.ErrorIs(t, err, aesige.ErrKeyTooShort)
}

func TestCreateLocalKey(t *testing.T) {
	salt := random.Bytes(32)
	key := aesige.CreateLocalKey(salt, "passcode")
	assert.Len(t, key, aesige.LocalKeyLength)
	// Deterministic for the same inputs, different for any other input.
	assert.Equal(t, key, aesige.CreateLocalKey(salt, "passcode"))
	assert.NotEqual(t, key, aesige.CreateLocalKey(salt, "other"))
	assert.NotEqual(t, key, aesige.CreateLocalKey(random.Bytes(32), "passcode"))
	assert.Len(t, aesige.CreateLocalKey(salt, ""), aesige.LocalKeyLength)
}

func TestPad(t *testing.T) {
	for length := 1; length <= 2*aes.BlockSize; length++ {
		padded := aesige.Pad(random.Bytes(length))
		assert.Zero(t, len(padded)%aes.BlockSize, "length %d", length)
		assert.GreaterOrEqual(t, len(padded), length)
	}
	assert.Len(t, aesige.Pad(nil), aes.BlockSize)
}
