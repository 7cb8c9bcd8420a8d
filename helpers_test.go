package stardust

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// quietLogs silences diagnostics for the duration of the test.
func quietLogs(t *testing.T) {
	t.Helper()
	prev := LogOutput
	LogOutput = io.Discard
	t.Cleanup(func() { LogOutput = prev })
}

// captureLogs redirects diagnostics into the returned buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := LogOutput
	LogOutput = &buf
	t.Cleanup(func() { LogOutput = prev })
	return &buf
}

// ---- recording surface ------------------------------------------------------

type surfaceOp struct {
	kind string // clear, clearRect, draw, fill, stroke
	clip DirtyRect
	rect DirtyRect
	src  *recordingSurface
	x, y float64
	r    float64
}

type surfaceLog struct {
	ops []surfaceOp
}

func (l *surfaceLog) count(kind string) int {
	n := 0
	for _, op := range l.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func (l *surfaceLog) reset() {
	l.ops = l.ops[:0]
}

// recordingSurface is a Surface that records every call instead of drawing.
// Regions share their parent's log and carry their clip.
type recordingSurface struct {
	w, h     int
	clip     DirtyRect
	log      *surfaceLog
	resizes  int
	disposed bool
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{w: w, h: h, clip: DirtyRect{Width: w, Height: h}, log: &surfaceLog{}}
}

func recordingFactory(w, h int) Surface {
	return newRecordingSurface(w, h)
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Clear() {
	s.log.ops = append(s.log.ops, surfaceOp{kind: "clear", clip: s.clip})
}

func (s *recordingSurface) ClearRect(r DirtyRect) {
	s.log.ops = append(s.log.ops, surfaceOp{kind: "clearRect", clip: s.clip, rect: r})
}

func (s *recordingSurface) Region(r DirtyRect) Surface {
	return &recordingSurface{w: r.Width, h: r.Height, clip: r, log: s.log}
}

func (s *recordingSurface) DrawSurface(src Surface, x, y float64, _ BlendMode) {
	rs, _ := src.(*recordingSurface)
	s.log.ops = append(s.log.ops, surfaceOp{kind: "draw", clip: s.clip, src: rs, x: x, y: y})
}

func (s *recordingSurface) FillCircle(cx, cy, r float64, _ Color) {
	s.log.ops = append(s.log.ops, surfaceOp{kind: "fill", clip: s.clip, x: cx, y: cy, r: r})
}

func (s *recordingSurface) StrokeCircle(cx, cy, r, _ float64, _ Color) {
	s.log.ops = append(s.log.ops, surfaceOp{kind: "stroke", clip: s.clip, x: cx, y: cy, r: r})
}

func (s *recordingSurface) Resize(w, h int) {
	s.w, s.h = w, h
	s.clip = DirtyRect{Width: w, Height: h}
	s.resizes++
}

func (s *recordingSurface) Dispose() {
	s.disposed = true
}
