package aesige

import "errors"

var (
	ErrIntegrityCheckFailed = errors.New("decrypted data failed integrity check (wrong key/passcode or corrupted data)")
	ErrKeyTooShort          = errors.New("key is too short for key derivation")
	ErrCiphertextTooShort   = errors.New("ciphertext is shorter than message key plus one block")
	ErrNotBlockAligned      = errors.New("data length is not a multiple of the AES block size")
)
