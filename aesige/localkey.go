// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package aesige

import (
	"crypto/aes"
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"

	"go.mau.fi/util/random"
)

// CreateLocalKey derives the 256-byte key that protects the key file's
// encrypted key blob from the stored salt and the user's passcode.
//
// The single PBKDF2 iteration is not a bug: it's what the desktop client
// uses for this derivation, and changing it would make every real
// container fail the integrity check.
func CreateLocalKey(salt []byte, passcode string) []byte {
	hasher := sha512.New()
	hasher.Write(salt)
	hasher.Write([]byte(passcode))
	hasher.Write(salt)
	digest := hasher.Sum(nil)
	return pbkdf2.Key(digest, salt, 1, LocalKeyLength, sha512.New)
}

// Pad appends random bytes until the data is AES block aligned, matching
// how the desktop client pads plaintexts before local encryption. The
// serialization inside carries its own lengths, so readers never look at
// the padding.
func Pad(data []byte) []byte {
	excess := len(data) % aes.BlockSize
	if excess == 0 && len(data) > 0 {
		return data
	}
	return append(data, random.Bytes(aes.BlockSize-excess)...)
}
