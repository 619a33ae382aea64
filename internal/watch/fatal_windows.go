// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 codes after which ReadDirectoryChangesW stops delivering events.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6) // watched directory removed
	errnoNotEnoughMemory  = syscall.Errno(8)
)

func isFatalFsnotifyError(err error) bool {
	for _, errno := range []syscall.Errno{errnoTooManyOpenFiles, errnoInvalidHandle, errnoNotEnoughMemory} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
