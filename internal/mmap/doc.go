// Package mmap maps anonymous memory outside the Go heap.
//
// The garbage collector never scans, moves or frees such memory, which
// makes it suitable for benchmark arenas holding raw pointer graphs, and
// the kernel can be asked to back it with transparent huge pages:
//
//	m, err := mmap.MapAnon(64 << 20)
//	if err != nil {
//	    return err
//	}
//	_ = m.Advise(mmap.AccessHugePage) // before the first write
//	s, _ := m.Span(off, n)
//	_ = s.Advise(mmap.AccessPopulateWrite)
//
// On Unix the mapping comes from mmap(2) and hints go through madvise(2);
// AccessHugePage and AccessPopulateWrite are Linux only and report
// ErrUnsupported elsewhere. Windows uses VirtualAlloc and accepts no huge
// page hint after allocation. Other platforms fall back to the Go heap.
package mmap
