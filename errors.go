package tdesktop

import (
	"errors"

	"go.mau.fi/tdesktop/aesige"
	"go.mau.fi/tdesktop/tdf"
)

var (
	// ErrMissingFile means no physical variant of a required container exists.
	ErrMissingFile = tdf.ErrMissingFile
	// ErrInvalidMagic means a container's magic tag doesn't match TDF$.
	ErrInvalidMagic = tdf.ErrInvalidMagic
	// ErrCorruptedContainer means a container's trailing checksum doesn't match.
	ErrCorruptedContainer = tdf.ErrCorruptedContainer
	// ErrIntegrityFailure means a decrypted blob failed its integrity check.
	// A wrong passcode and corrupted data are indistinguishable here, so
	// this must never be reported as specifically one or the other.
	ErrIntegrityFailure = aesige.ErrIntegrityCheckFailed

	// ErrSaltLengthInvalid means the key file's stored salt is not 32 bytes.
	ErrSaltLengthInvalid = errors.New("key file salt is not 32 bytes")
	// ErrUnsupportedFormatVersion means the account data blob doesn't start
	// with the expected format version constant.
	ErrUnsupportedFormatVersion = errors.New("unsupported account data format version")
	// ErrAccountIndexOutOfRange means the requested account index is not
	// below the account count stored in the key file.
	ErrAccountIndexOutOfRange = errors.New("account index is out of range")
	// ErrAuthKeyNotFoundForDC means the account data held no auth key for
	// the account's own main DC.
	ErrAuthKeyNotFoundForDC = errors.New("account has no auth key for its main DC")
	// ErrUnknownDatacenter means the account's main DC has no known address.
	ErrUnknownDatacenter = errors.New("no known address for datacenter")
)
