// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdesktop

import (
	"crypto/md5"
	"fmt"
	"path/filepath"
	"strconv"

	"go.mau.fi/tdesktop/aesige"
	"go.mau.fi/tdesktop/tdf"
)

// accountDataFormatVersion is the constant at the start of every
// decrypted account data blob.
const accountDataFormatVersion = 75

// reservedHeaderLength is the number of bytes between the nested buffer
// start and the user ID. Their internal structure is undocumented and
// deliberately not interpreted here.
const reservedHeaderLength = 12

// DefaultDataName is the data name of the first (or only) account.
const DefaultDataName = "data"

// AuthKeyEntry is one per-DC auth key inside an account's data file.
type AuthKeyEntry struct {
	DCID    uint32
	AuthKey []byte
}

// Account is the identity recovered from one decrypted account data file.
type Account struct {
	UserID   uint32
	MainDC   uint32
	AuthKeys []AuthKeyEntry
}

// MainAuthKey returns the auth key for the account's main DC. Entries
// are scanned in file order and the first match wins.
func (acc *Account) MainAuthKey() ([]byte, error) {
	for _, entry := range acc.AuthKeys {
		if entry.DCID == acc.MainDC {
			return entry.AuthKey, nil
		}
	}
	return nil, fmt.Errorf("%w: DC %d", ErrAuthKeyNotFoundForDC, acc.MainDC)
}

const hexDigits = "0123456789ABCDEF"

// FileKey computes the on-disk name of an account's data file: the first
// 16 hex characters of the MD5 of the composed data name, uppercased,
// with every adjacent pair of characters swapped. The pair swap is how
// the desktop client spells these names; a plain MD5 hex string won't
// match any real directory.
func FileKey(dataName string, index int) string {
	if index > 0 {
		dataName += "#" + strconv.Itoa(index+1)
	}
	digest := md5.Sum([]byte(dataName))
	out := make([]byte, 16)
	for i, b := range digest[:8] {
		out[i*2] = hexDigits[b&0x0F]
		out[i*2+1] = hexDigits[b>>4]
	}
	return string(out)
}

// ReadAccount reads and decrypts one account's data file from a tdata
// root, locating it by FileKey. The accountsCount bound comes from
// ReadKeyData; an index at or past it fails with ErrAccountIndexOutOfRange
// without touching the filesystem.
func ReadAccount(root, dataName string, index int, localKey []byte, accountsCount uint32) (*Account, error) {
	if index < 0 || uint32(index) >= accountsCount {
		return nil, fmt.Errorf("%w: index %d, account count %d", ErrAccountIndexOutOfRange, index, accountsCount)
	}
	container, err := tdf.Open(filepath.Join(root, FileKey(dataName, index)))
	if err != nil {
		return nil, fmt.Errorf("failed to read account data: %w", err)
	}
	data, err := aesige.Decrypt(container.Payload, localKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt account data: %w", err)
	}
	return parseAccountData(data)
}

func parseAccountData(data []byte) (*Account, error) {
	outer := tdf.NewStream(data)
	version, err := outer.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read format version: %w", err)
	} else if version != accountDataFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormatVersion, version)
	}
	inner, err := outer.ReadBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read account data buffer: %w", err)
	}

	stream := tdf.NewStream(inner)
	if err = stream.Skip(reservedHeaderLength); err != nil {
		return nil, fmt.Errorf("failed to skip reserved header: %w", err)
	}
	var acc Account
	if acc.UserID, err = stream.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read user ID: %w", err)
	}
	if acc.MainDC, err = stream.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read main DC: %w", err)
	}
	keyCount, err := stream.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read key count: %w", err)
	}
	acc.AuthKeys = make([]AuthKeyEntry, keyCount)
	for i := range acc.AuthKeys {
		if acc.AuthKeys[i].DCID, err = stream.ReadUint32(); err != nil {
			return nil, fmt.Errorf("failed to read DC ID of key #%d: %w", i, err)
		}
		if acc.AuthKeys[i].AuthKey, err = stream.ReadBytes(aesige.LocalKeyLength); err != nil {
			return nil, fmt.Errorf("failed to read auth key #%d: %w", i, err)
		}
	}
	return &acc, nil
}
