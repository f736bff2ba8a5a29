// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tdf implements reading the TDF container format that Telegram
// Desktop uses for its local encrypted files: a 4-byte magic tag, a 4-byte
// format version, an opaque payload and a trailing MD5 checksum.
package tdf

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Magic is the tag at the start of every TDF container.
const Magic = "TDF$"

const checksumLength = md5.Size

// Suffixes are the physical file name variants of a single logical
// container, in resolution priority order. Telegram Desktop rotates
// writes between them, so any one of them may hold the current copy.
var Suffixes = []string{"", "0", "1", "s"}

var (
	ErrMissingFile        = errors.New("no file variant of the container exists")
	ErrInvalidMagic       = errors.New("container has invalid magic tag")
	ErrCorruptedContainer = errors.New("container checksum mismatch")
	ErrTooShort           = errors.New("container file is too short")
)

// File is a validated, decoded TDF container.
type File struct {
	Version uint32
	Payload []byte
}

// ReadFile reads and validates a single physical container file.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes and validates raw container bytes.
func Parse(raw []byte) (*File, error) {
	if len(raw) < len(Magic)+4+checksumLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(raw))
	}
	if string(raw[:len(Magic)]) != Magic {
		return nil, ErrInvalidMagic
	}
	// The raw version bytes take part in the checksum below, so they're
	// kept as a slice rather than decoded immediately.
	versionBytes := raw[len(Magic) : len(Magic)+4]
	rest := raw[len(Magic)+4:]
	payload := rest[:len(rest)-checksumLength]
	storedChecksum := rest[len(rest)-checksumLength:]

	hasher := md5.New()
	hasher.Write(payload)
	_ = binary.Write(hasher, binary.LittleEndian, uint32(len(payload)))
	hasher.Write(versionBytes)
	hasher.Write([]byte(Magic))
	if [checksumLength]byte(hasher.Sum(nil)) != [checksumLength]byte(storedChecksum) {
		return nil, ErrCorruptedContainer
	}
	return &File{
		Version: binary.LittleEndian.Uint32(versionBytes),
		Payload: payload,
	}, nil
}

// Open resolves a logical container to its first valid physical variant.
// The suffixes are tried in priority order and the first variant that
// passes both the magic and checksum validation wins. If no variant
// exists at all, the error wraps ErrMissingFile; if variants exist but
// all fail validation, the per-variant errors are joined.
func Open(basePath string) (*File, error) {
	var variantErrs []error
	found := false
	for _, suffix := range Suffixes {
		file, err := ReadFile(basePath + suffix)
		if err == nil {
			return file, nil
		} else if os.IsNotExist(err) {
			continue
		}
		found = true
		variantErrs = append(variantErrs, fmt.Errorf("%s%s: %w", basePath, suffix, err))
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, basePath)
	}
	return nil, errors.Join(variantErrs...)
}

// Marshal encodes a container back into its on-disk representation.
// The reading pipeline never writes into a tdata directory: this exists
// for tests and external fixture tooling.
func Marshal(file *File) []byte {
	out := make([]byte, 0, len(Magic)+4+len(file.Payload)+checksumLength)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, file.Version)
	out = append(out, file.Payload...)

	hasher := md5.New()
	hasher.Write(file.Payload)
	_ = binary.Write(hasher, binary.LittleEndian, uint32(len(file.Payload)))
	_ = binary.Write(hasher, binary.LittleEndian, file.Version)
	hasher.Write([]byte(Magic))
	return hasher.Sum(out)
}
