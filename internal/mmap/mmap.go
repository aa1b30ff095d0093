package mmap

import (
	"errors"
	"os"
)

// File is a read-only memory mapping of one document.
//
// Data aliases the mapped region directly and stays valid until Close.
type File struct {
	Data []byte
	f    *os.File
}

// Open maps the file at path read-only.
//
// Documents are consumed in a single forward pass by the parser, so the
// mapping is advised for sequential access where the platform supports
// it. Empty files map to a nil Data slice.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	switch size := info.Size(); {
	case size == 0:
		return &File{f: f}, nil
	case size != int64(int(size)) || size < 0:
		f.Close()
		return nil, errors.New("mmap: file too large to map")
	default:
		data, err := mmap(f, int(size))
		if err != nil {
			f.Close()
			return nil, err
		}

		adviseSequential(data)

		return &File{Data: data, f: f}, nil
	}
}

// Close releases the mapping and the underlying file. Close is idempotent
// and safe on a nil receiver; Data must not be read afterwards.
func (m *File) Close() error {
	if m == nil {
		return nil
	}

	var err error

	if m.Data != nil {
		err = munmap(m.Data)
		m.Data = nil
	}

	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}

		m.f = nil
	}

	return err
}
