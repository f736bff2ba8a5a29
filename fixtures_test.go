// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdesktop_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go.mau.fi/util/random"

	"go.mau.fi/tdesktop"
	"go.mau.fi/tdesktop/aesige"
	"go.mau.fi/tdesktop/tdf"
)

const fixtureFileVersion = 4010101

type fixtureAccount struct {
	UserID   uint32
	MainDC   uint32
	AuthKeys []tdesktop.AuthKeyEntry
}

// buildTDataRoot writes a minimal but fully valid tdata directory with
// the given passcode and accounts, using the encrypt mirrors of the
// reading pipeline. It returns the local key for tests that need to
// forge individual files.
func buildTDataRoot(t *testing.T, root, passcode string, accounts []fixtureAccount) []byte {
	t.Helper()
	localKey := random.Bytes(aesige.LocalKeyLength)
	salt := random.Bytes(32)
	derivationKey := aesige.CreateLocalKey(salt, passcode)

	keyInner, err := aesige.Encrypt(aesige.Pad(tdf.AppendBuffer(nil, localKey)), derivationKey)
	require.NoError(t, err)
	info := binary.BigEndian.AppendUint32(nil, uint32(len(accounts)))
	encryptedInfo, err := aesige.Encrypt(aesige.Pad(info), localKey)
	require.NoError(t, err)

	payload := tdf.AppendBuffer(nil, salt)
	payload = tdf.AppendBuffer(payload, keyInner)
	payload = tdf.AppendBuffer(payload, encryptedInfo)
	writeContainer(t, filepath.Join(root, "key_datas"), payload)

	for i, acc := range accounts {
		writeAccountFile(t, root, i, localKey, acc)
	}
	return localKey
}

func writeAccountFile(t *testing.T, root string, index int, localKey []byte, acc fixtureAccount) {
	t.Helper()
	inner := make([]byte, 12)
	inner = binary.BigEndian.AppendUint32(inner, acc.UserID)
	inner = binary.BigEndian.AppendUint32(inner, acc.MainDC)
	inner = binary.BigEndian.AppendUint32(inner, uint32(len(acc.AuthKeys)))
	for _, entry := range acc.AuthKeys {
		inner = binary.BigEndian.AppendUint32(inner, entry.DCID)
		inner = append(inner, entry.AuthKey...)
	}
	plaintext := binary.BigEndian.AppendUint32(nil, 75)
	plaintext = tdf.AppendBuffer(plaintext, inner)
	encrypted, err := aesige.Encrypt(aesige.Pad(plaintext), localKey)
	require.NoError(t, err)
	writeContainer(t, filepath.Join(root, tdesktop.FileKey(tdesktop.DefaultDataName, index)+"s"), encrypted)
}

func writeContainer(t *testing.T, path string, payload []byte) {
	t.Helper()
	raw := tdf.Marshal(&tdf.File{Version: fixtureFileVersion, Payload: payload})
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func randomAuthKey() []byte {
	return random.Bytes(aesige.LocalKeyLength)
}
