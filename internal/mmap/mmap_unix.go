//go:build !windows

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
}

// adviseSequential tells the kernel the mapping will be read front to
// back exactly once, so read-ahead can stay in front of the parser.
// Best effort; the mapping works the same without it.
func adviseSequential(data []byte) {
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}

func munmap(data []byte) error {
	return unix.Munmap(data)
}
