// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exerrors"
	"go.mau.fi/util/exzerolog"
	"go.mau.fi/util/ptr"
	"go.mau.fi/zeroconfig"
	flag "maunium.net/go/mauflag"

	"go.mau.fi/tdesktop"
)

var tdataPath = flag.MakeFull("t", "tdata", "Path to the tdata directory.", "").String()
var passcode = flag.MakeFull("p", "passcode", "Local passcode, if one is set.", "").String()
var outputDir = flag.MakeFull("o", "output", "Directory to write exported sessions into.", "sessions").String()
var accountIndex = flag.MakeFull("a", "account", "Account index to export. Negative means all accounts.", "-1").Int()
var dataName = flag.MakeFull("d", "data-name", "Override the account data name.", tdesktop.DefaultDataName).String()
var listOnly = flag.MakeFull("l", "list", "Only enumerate the tdata directory, don't decrypt anything.", "false").Bool()
var verbose = flag.MakeFull("v", "verbose", "Enable debug logging.", "false").Bool()
var wantHelp, _ = flag.MakeHelpFlag()

func main() {
	flag.SetHelpTitles(
		"tdata-export - Recover usable sessions from Telegram Desktop's local storage.",
		"tdata-export [-t /path/to/tdata] [-p passcode] [-o dir] [-a index]")
	err := flag.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	}

	minLevel := zerolog.InfoLevel
	if *verbose {
		minLevel = zerolog.DebugLevel
	}
	log := exerrors.Must((&zeroconfig.Config{
		MinLevel: ptr.Ptr(minLevel),
		Writers: []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStderr,
			Format: zeroconfig.LogFormatPrettyColored,
		}},
	}).Compile())
	exzerolog.SetupDefaults(log)
	ctx := log.WithContext(context.Background())

	path := *tdataPath
	if path == "" {
		path = tdesktop.DefaultPath()
		if path == "" {
			log.Fatal().Msg("No -t flag given and no default tdata path on this platform")
		}
	}

	catalog, err := tdesktop.Enumerate(ctx, path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to enumerate tdata directory")
	}
	log.Info().
		Int("account_count", catalog.AccountCount()).
		Strs("account_folders", catalog.AccountFolders).
		Msg("Enumerated tdata directory")
	if *listOnly {
		for _, meta := range catalog.Metadata {
			log.Info().
				Str("phone_number", meta.PhoneNumber).
				Str("username", meta.Username).
				Int64("user_id", meta.UserID).
				Msg("Found sidecar metadata")
		}
		return
	}

	indexes := []int{*accountIndex}
	if *accountIndex < 0 {
		count := catalog.AccountCount()
		if count == 0 {
			count = 1
		}
		indexes = make([]int, count)
		for i := range indexes {
			indexes[i] = i
		}
	}
	exported := 0
	for _, index := range indexes {
		if exportAccount(ctx, path, index, catalog) {
			exported++
		}
	}
	log.Info().Int("exported", exported).Msg("Done")
	if exported == 0 {
		os.Exit(2)
	}
}

func exportAccount(ctx context.Context, path string, index int, catalog *tdesktop.Catalog) bool {
	log := zerolog.Ctx(ctx).With().Int("account_index", index).Logger()
	sess, acc, err := tdesktop.Convert(ctx, tdesktop.ConvertRequest{
		Path:         path,
		Passcode:     *passcode,
		AccountIndex: index,
		DataName:     *dataName,
	})
	if errors.Is(err, tdesktop.ErrIntegrityFailure) {
		log.Error().Err(err).Msg("Decryption failed (wrong passcode or corrupted data)")
		return false
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to convert account")
		return false
	}

	var srcMeta *tdesktop.SidecarMetadata
	if index < len(catalog.Metadata) {
		srcMeta = &catalog.Metadata[index]
	}
	sessionPath, err := tdesktop.Export(ctx, sess, tdesktop.NewExportedMetadata(acc, srcMeta), *outputDir)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write session")
		return false
	}
	log.Info().
		Uint32("user_id", acc.UserID).
		Uint32("dc_id", sess.DCID).
		Str("session_path", sessionPath).
		Msg("Exported account session")
	return true
}
