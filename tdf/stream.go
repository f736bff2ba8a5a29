// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Stream reads the Qt-style serialization used inside container payloads:
// big-endian uint32s and length-prefixed byte buffers.
type Stream struct {
	buf []byte
	pos int
}

func NewStream(data []byte) *Stream {
	return &Stream{buf: data}
}

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int {
	return len(s.buf) - s.pos
}

func (s *Stream) ReadUint32() (uint32, error) {
	if s.Remaining() < 4 {
		return 0, fmt.Errorf("read uint32 at %d: %w", s.pos, io.ErrUnexpectedEOF)
	}
	val := binary.BigEndian.Uint32(s.buf[s.pos:])
	s.pos += 4
	return val, nil
}

// ReadBytes returns the next n bytes without copying.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || s.Remaining() < n {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, s.pos, io.ErrUnexpectedEOF)
	}
	out := s.buf[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

// ReadBuffer reads a uint32 length prefix followed by that many bytes.
func (s *Stream) ReadBuffer() ([]byte, error) {
	length, err := s.ReadUint32()
	if err != nil {
		return nil, err
	}
	return s.ReadBytes(int(length))
}

func (s *Stream) Skip(n int) error {
	_, err := s.ReadBytes(n)
	return err
}

// AppendBuffer appends a length-prefixed buffer in the same encoding
// ReadBuffer consumes. Used by tests to construct payloads.
func AppendBuffer(out, data []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	return append(out, data...)
}
