package render

import "sync"

// Frame is one finished render of a surface.
type Frame struct {
	Title       string
	PNG         []byte
	Thumbnail   []byte
	Width       int
	Height      int
	Legend      []string
	Colors      []string
	Points      []int
	Placeholder bool
	Revision    int
}

// Surface holds the latest frame drawn for one plot view.
type Surface struct {
	mu       sync.RWMutex
	frame    Frame
	revision int
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Frame returns a copy of the current frame.
func (s *Surface) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := s.frame
	f.PNG = append([]byte(nil), s.frame.PNG...)
	f.Thumbnail = append([]byte(nil), s.frame.Thumbnail...)
	f.Legend = append([]string(nil), s.frame.Legend...)
	f.Colors = append([]string(nil), s.frame.Colors...)
	f.Points = append([]int(nil), s.frame.Points...)
	return f
}

// replace discards the previous frame and installs f.
func (s *Surface) replace(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	f.Revision = s.revision
	s.frame = f
}
