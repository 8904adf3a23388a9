package display

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/landmark"
)

// JPEGLatch keeps the most recent annotated frame as JPEG bytes so the HTTP
// stream can serve it without touching the camera.
type JPEGLatch struct {
	mu    sync.RWMutex
	frame []byte
	seq   uint64
}

// NewJPEGLatch creates an empty latch.
func NewJPEGLatch() *JPEGLatch {
	return &JPEGLatch{}
}

// Show encodes an annotated copy of frame.
func (l *JPEGLatch) Show(frame *gocv.Mat, snap *landmark.Snapshot) error {
	if frame == nil || frame.Empty() {
		return nil
	}

	annotated := frame.Clone()
	defer annotated.Close()
	DrawOverlay(&annotated, snap)

	buf, err := gocv.IMEncode(".jpg", annotated)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	l.mu.Lock()
	l.frame = data
	l.seq++
	l.mu.Unlock()
	return nil
}

// PollKey never reports keys.
func (l *JPEGLatch) PollKey() Key { return KeyNone }

// Close drops the stored frame.
func (l *JPEGLatch) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = nil
	return nil
}

// Latest returns the last encoded frame and its sequence number.
// The sequence is zero until the first frame arrives.
func (l *JPEGLatch) Latest() ([]byte, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frame, l.seq
}
