//go:build !unix

package provider

import "errors"

// ErrMmapUnsupported is returned by Mmap on platforms without a
// unix-style mmap syscall.
var ErrMmapUnsupported = errors.New("segheap: mmap provider not supported on this platform")

// Mmap is unavailable outside unix; use Arena instead.
type Mmap struct{}

func NewMmap(maxSize int) *Mmap { return &Mmap{} }

func (m *Mmap) Low() int                { return 0 }
func (m *Mmap) High() int               { return -1 }
func (m *Mmap) Size() int               { return 0 }
func (m *Mmap) Bytes() []byte           { return nil }
func (m *Mmap) Extend(int) (int, bool)  { return 0, false }
func (m *Mmap) Close() error            { return ErrMmapUnsupported }
