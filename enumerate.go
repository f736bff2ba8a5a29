// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdesktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	accountFolderRegex = regexp.MustCompile(`^[A-F0-9]{16}$`)
	dataFileRegex      = regexp.MustCompile(`^[A-F0-9]{16}s$`)
	metadataFileRegex  = regexp.MustCompile(`^\d+\.json$`)
)

// reservedFolderNames are directory entries that are never account folders.
var reservedFolderNames = map[string]struct{}{
	"user_data": {},
	"temp":      {},
	"emoji":     {},
}

// globalSettingsFile matches the data file pattern but holds the global
// settings rather than an account.
const globalSettingsFile = "settingss"

// SidecarMetadata is non-authoritative account info parsed from a
// <phone number>.json file next to the container. Automation tooling
// drops these files beside tdata roots it manages; the desktop client
// itself never writes them, so nothing here is proof of identity.
type SidecarMetadata struct {
	Path        string `json:"-"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	UserID      int64  `json:"userId,omitempty"`
	Username    string `json:"username,omitempty"`
	AppID       int64  `json:"appId,omitempty"`
	AppHash     string `json:"appHash,omitempty"`
}

// Catalog is the result of a password-free inspection of a tdata root.
type Catalog struct {
	AccountFolders []string
	DataFiles      []string
	Metadata       []SidecarMetadata
}

// AccountCount estimates how many accounts the root holds by taking the
// maximum of the three discovery methods. Any single method can
// undercount, so disagreement raises the estimate rather than lowering it.
func (cat *Catalog) AccountCount() int {
	count := len(cat.AccountFolders)
	if len(cat.DataFiles) > count {
		count = len(cat.DataFiles)
	}
	if len(cat.Metadata) > count {
		count = len(cat.Metadata)
	}
	return count
}

// Enumerate catalogs a tdata root without decrypting anything: candidate
// account folders, candidate account data files and sidecar metadata
// files. Metadata parsing is best-effort; unreadable or invalid JSON is
// logged and skipped, never fatal.
func Enumerate(ctx context.Context, root string) (*Catalog, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list tdata root: %w", err)
	}
	log := zerolog.Ctx(ctx)
	var cat Catalog
	for _, entry := range entries {
		name := entry.Name()
		if _, reserved := reservedFolderNames[name]; reserved {
			continue
		}
		switch {
		case entry.IsDir() && accountFolderRegex.MatchString(name):
			cat.AccountFolders = append(cat.AccountFolders, name)
		case entry.IsDir():
		case dataFileRegex.MatchString(name) && name != globalSettingsFile:
			cat.DataFiles = append(cat.DataFiles, name)
		case metadataFileRegex.MatchString(name) &&
			!strings.Contains(name, "shortcuts") && !strings.Contains(name, "config"):
			meta, err := readSidecarMetadata(filepath.Join(root, name))
			if err != nil {
				log.Debug().Err(err).Str("file", name).Msg("Skipping unparseable sidecar metadata")
				continue
			}
			cat.Metadata = append(cat.Metadata, *meta)
		}
	}
	log.Debug().
		Int("account_folders", len(cat.AccountFolders)).
		Int("data_files", len(cat.DataFiles)).
		Int("metadata_files", len(cat.Metadata)).
		Msg("Enumerated tdata root")
	return &cat, nil
}

func readSidecarMetadata(path string) (*SidecarMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	meta := &SidecarMetadata{
		Path:        path,
		PhoneNumber: strings.TrimSuffix(filepath.Base(path), ".json"),
		UserID:      firstResult(parsed, "userId", "user_id", "id").Int(),
		Username:    firstResult(parsed, "username", "userName").Str,
		AppID:       firstResult(parsed, "appId", "app_id").Int(),
		AppHash:     firstResult(parsed, "appHash", "app_hash").Str,
	}
	if phone := firstResult(parsed, "phoneNumber", "phone"); phone.Exists() {
		meta.PhoneNumber = phone.Str
	}
	return meta, nil
}

// firstResult returns the first of the given gjson paths that exists.
// Sidecar files come from several automation tools with slightly
// different field spellings.
func firstResult(parsed gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if res := parsed.Get(path); res.Exists() {
			return res
		}
	}
	return gjson.Result{}
}
