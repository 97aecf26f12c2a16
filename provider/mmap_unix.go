//go:build unix

package provider

import "golang.org/x/sys/unix"

// Mmap is a Provider backed by an anonymous OS mapping. Unlike Arena,
// Extend can't grow an anonymous mapping in place portably, so it maps
// a new, larger region and copies the old contents across before
// unmapping the old one.
type Mmap struct {
	buf     []byte
	maxSize int
}

// NewMmap creates an empty Mmap provider. maxSize caps total growth; 0
// means unbounded.
func NewMmap(maxSize int) *Mmap {
	return &Mmap{maxSize: maxSize}
}

func (m *Mmap) Low() int { return 0 }

func (m *Mmap) High() int {
	if len(m.buf) == 0 {
		return -1
	}
	return len(m.buf) - 1
}

func (m *Mmap) Size() int { return len(m.buf) }

func (m *Mmap) Bytes() []byte { return m.buf }

func (m *Mmap) Extend(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	newSize := len(m.buf) + n
	if m.maxSize > 0 && newSize > m.maxSize {
		return 0, false
	}

	newBuf, err := unix.Mmap(-1, 0, newSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, false
	}

	base := len(m.buf)
	copy(newBuf, m.buf)

	if m.buf != nil {
		_ = unix.Munmap(m.buf)
	}
	m.buf = newBuf
	return base, true
}

// Close unmaps the region. Not part of the Provider interface: only
// OS-backed providers need explicit teardown.
func (m *Mmap) Close() error {
	if m.buf == nil {
		return nil
	}
	err := unix.Munmap(m.buf)
	m.buf = nil
	return err
}
