// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdesktop

import (
	"fmt"
	"path/filepath"

	"go.mau.fi/tdesktop/aesige"
	"go.mau.fi/tdesktop/tdf"
)

const saltLength = 32

// KeyData is the outcome of parsing a tdata root's key file: the master
// key that every other encrypted file in the directory is protected
// with, plus the number of accounts the root holds.
type KeyData struct {
	LocalKey      []byte
	AccountsCount uint32
}

// keyFilePath returns the base path of the key file for the given data
// name, without a rotation suffix. The multi-account key file on disk is
// key_datas, which the suffix resolution in tdf.Open reaches as the "s"
// variant of key_data.
func keyFilePath(root, dataName string) string {
	return filepath.Join(root, "key_"+dataName)
}

// ReadKeyData reads and decrypts the key file of a tdata root.
//
// The key file payload is three length-prefixed buffers: a 32-byte salt,
// the encrypted key blob and the encrypted info blob. The salt and
// passcode yield a derivation key which opens the key blob; its
// plaintext is one more length-prefixed buffer holding the 256-byte
// local key. The local key then opens the info blob, whose first four
// bytes are the account count.
//
// An incorrect passcode surfaces as ErrIntegrityFailure.
func ReadKeyData(root, dataName, passcode string) (*KeyData, error) {
	container, err := tdf.Open(keyFilePath(root, dataName))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	stream := tdf.NewStream(container.Payload)
	salt, err := stream.ReadBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	} else if len(salt) != saltLength {
		return nil, fmt.Errorf("%w: got %d", ErrSaltLengthInvalid, len(salt))
	}
	encryptedKey, err := stream.ReadBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted key: %w", err)
	}
	encryptedInfo, err := stream.ReadBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted info: %w", err)
	}

	derivationKey := aesige.CreateLocalKey(salt, passcode)
	keyInner, err := aesige.Decrypt(encryptedKey, derivationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt key blob: %w", err)
	}
	localKey, err := tdf.NewStream(keyInner).ReadBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read local key: %w", err)
	} else if len(localKey) != aesige.LocalKeyLength {
		return nil, fmt.Errorf("unexpected local key length %d", len(localKey))
	}

	info, err := aesige.Decrypt(encryptedInfo, localKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt info blob: %w", err)
	}
	accountsCount, err := tdf.NewStream(info).ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read account count: %w", err)
	}
	return &KeyData{
		LocalKey:      localKey,
		AccountsCount: accountsCount,
	}, nil
}
