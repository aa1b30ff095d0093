// Package mmap provides read-only memory-mapped file access.
//
// Mesh piece files can be hundreds of megabytes of base64 encoded data;
// mapping them avoids copying the bytes through read buffers and lets the
// operating system page data in as the parser advances.
//
//	m, err := mmap.Open("piece_0.vtu")
//	if err != nil { ... }
//	defer m.Close()
//
//	r := bytes.NewReader(m.Data)
//
// Unix platforms use mmap(2); Windows uses CreateFileMapping and
// MapViewOfFile. Callers must ensure no reads of Data happen after Close.
package mmap
