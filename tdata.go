// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tdesktop recovers usable sessions from Telegram Desktop's
// local encrypted storage (the tdata directory), so that automation
// tooling can act as an already-authenticated account without an
// interactive login.
//
// A conversion is pure CPU-bound cryptography over static local files:
// it never writes into the source directory, never touches the network,
// and allocates all of its state per call, so concurrent conversions of
// the same root are safe.
package tdesktop

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

// ConvertRequest selects what to recover from a tdata root.
type ConvertRequest struct {
	// Path is the tdata root directory.
	Path string
	// Passcode is the local passcode, empty when none is set.
	Passcode string
	// AccountIndex selects the account in multi-account roots (0-based).
	AccountIndex int
	// DataName overrides the account data name. Defaults to "data".
	DataName string
}

// Convert runs the full recovery pipeline for one account: key file →
// local key → account data → session. It either returns a complete
// session plus the parsed account record, or exactly one typed error
// from this package; no partial result is ever returned.
func Convert(ctx context.Context, req ConvertRequest) (*RecoveredSession, *Account, error) {
	dataName := req.DataName
	if dataName == "" {
		dataName = DefaultDataName
	}
	log := zerolog.Ctx(ctx)
	keyData, err := ReadKeyData(req.Path, dataName, req.Passcode)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().
		Uint32("accounts_count", keyData.AccountsCount).
		Msg("Decrypted key file")

	acc, err := ReadAccount(req.Path, dataName, req.AccountIndex, keyData.LocalKey, keyData.AccountsCount)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().
		Uint32("user_id", acc.UserID).
		Uint32("main_dc", acc.MainDC).
		Int("auth_keys", len(acc.AuthKeys)).
		Msg("Decrypted account data")

	sess, err := acc.Session()
	if err != nil {
		return nil, nil, err
	}
	return sess, acc, nil
}

// DefaultPath returns the platform's default Telegram Desktop tdata
// location, or an empty string when there's no conventional one.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "linux":
		return filepath.Join(home, ".local", "share", "TelegramDesktop", "tdata")
	case "darwin":
		return filepath.Join(home, "Library", "Containers", "org.telegram.desktop",
			"Data", "Library", "Application Support", "Telegram Desktop", "tdata")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Telegram Desktop", "tdata")
		}
	}
	return ""
}
