//go:build windows

package mmap

import (
	"os"
	"syscall"
	"unsafe"
)

func mmap(f *os.File, size int) ([]byte, error) {
	h, err := syscall.CreateFileMapping(syscall.Handle(f.Fd()), nil, syscall.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	defer syscall.CloseHandle(h)

	addr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// adviseSequential is a no-op; there is no madvise equivalent worth the
// PrefetchVirtualMemory ceremony for a single forward scan.
func adviseSequential([]byte) {}

func munmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	return syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0])))
}
