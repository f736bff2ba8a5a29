// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdesktop

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gotd/td/session"
	"github.com/rs/zerolog"
	"go.mau.fi/util/jsontime"
)

// dcAddresses maps the production datacenter IDs to their literal IPv4
// addresses. Local session files only store the DC number, so the
// exported session has to carry the address itself.
var dcAddresses = map[uint32]string{
	1: "149.154.175.53",
	2: "149.154.167.51",
	3: "149.154.175.100",
	4: "149.154.167.91",
	5: "91.108.56.130",
}

// SessionPort is the port every exported session connects to.
const SessionPort = 443

// RecoveredSession is the externally usable artifact of a conversion:
// everything a client library needs to act as the account without
// logging in again.
type RecoveredSession struct {
	DCID          uint32
	ServerAddress string
	Port          uint16
	AuthKey       []byte
}

// Session assembles a RecoveredSession from an account record, selecting
// the auth key of the account's main DC and resolving its address.
func (acc *Account) Session() (*RecoveredSession, error) {
	authKey, err := acc.MainAuthKey()
	if err != nil {
		return nil, err
	}
	addr, ok := dcAddresses[acc.MainDC]
	if !ok {
		return nil, fmt.Errorf("%w: DC %d", ErrUnknownDatacenter, acc.MainDC)
	}
	return &RecoveredSession{
		DCID:          acc.MainDC,
		ServerAddress: addr,
		Port:          SessionPort,
		AuthKey:       authKey,
	}, nil
}

// authKeyID returns the identifier MTProto clients send with the key:
// the low 8 bytes of its SHA-1.
func authKeyID(authKey []byte) []byte {
	digest := sha1.Sum(authKey)
	return digest[12:20]
}

// WriteFile persists the session in the gotd session file format, which
// the automation layers consume as an opaque credential.
func (sess *RecoveredSession) WriteFile(ctx context.Context, path string) error {
	loader := session.Loader{Storage: &session.FileStorage{Path: path}}
	return loader.Save(ctx, &session.Data{
		DC:        int(sess.DCID),
		Addr:      fmt.Sprintf("%s:%d", sess.ServerAddress, sess.Port),
		AuthKey:   sess.AuthKey,
		AuthKeyID: authKeyID(sess.AuthKey),
	})
}

// ExportedMetadata is the JSON sidecar written next to an exported
// session file. Everything except userId and dcId comes from advisory
// sidecar files in the source directory and may be absent.
type ExportedMetadata struct {
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	UserID      uint32             `json:"userId"`
	Username    string             `json:"username,omitempty"`
	DCID        uint32             `json:"dcId"`
	ConvertedAt jsontime.UnixMilli `json:"convertedAt"`
	AppID       int64              `json:"appId,omitempty"`
	AppHash     string             `json:"appHash,omitempty"`
}

// Export writes the session file and a metadata sidecar into outputDir,
// creating the directory if needed. The base file name is the account's
// phone number when sidecar metadata revealed it, otherwise a timestamp.
// It returns the path of the written session file.
func Export(ctx context.Context, sess *RecoveredSession, meta *ExportedMetadata, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	baseName := meta.PhoneNumber
	if baseName == "" {
		baseName = meta.ConvertedAt.UTC().Format("20060102-150405.000")
	}

	sessionPath := filepath.Join(outputDir, baseName+".session")
	if err := sess.WriteFile(ctx, sessionPath); err != nil {
		return "", fmt.Errorf("failed to write session file: %w", err)
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	metaPath := filepath.Join(outputDir, baseName+".json")
	if err = os.WriteFile(metaPath, metaJSON, 0o600); err != nil {
		return "", fmt.Errorf("failed to write metadata file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("session_path", sessionPath).
		Str("metadata_path", metaPath).
		Msg("Exported session")
	return sessionPath, nil
}

// NewExportedMetadata fills an export sidecar from the recovered account
// and, when available, matching source-directory metadata.
func NewExportedMetadata(acc *Account, src *SidecarMetadata) *ExportedMetadata {
	meta := &ExportedMetadata{
		UserID:      acc.UserID,
		DCID:        acc.MainDC,
		ConvertedAt: jsontime.UM(time.Now()),
	}
	if src != nil {
		meta.PhoneNumber = src.PhoneNumber
		meta.Username = src.Username
		meta.AppID = src.AppID
		meta.AppHash = src.AppHash
	}
	return meta
}
