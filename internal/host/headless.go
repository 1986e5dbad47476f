package host

import (
	"io"
	"sync/atomic"

	"github.com/dcorbin/qlogo/internal/fileinput"
	"github.com/dcorbin/qlogo/internal/flushio"
)

// Headless is the console-only Host used by cmd/qlogo's default
// (non-GUI) mode and by tests: text I/O over any io.Reader/io.Writer
// pair, grounded on the teacher's fileinput.Input (line-tracked rune
// reading) and flushio.WriteFlusher (flush-after-print), with every
// turtle/canvas/screen/mouse call answering NO-GRAPHICS per spec 6.1.
type Headless struct {
	in  *fileinput.Input
	out flushio.WriteFlusher

	signal int32 // atomic Signal
}

// NewHeadless wraps r/w as the console; r may be nil for a write-only
// host (e.g. a pipe-fed batch run with no further reads expected).
func NewHeadless(r io.Reader, w io.Writer) *Headless {
	h := &Headless{out: flushio.NewWriteFlusher(w)}
	if r != nil {
		h.in = &fileinput.Input{Queue: []io.Reader{r}}
	}
	return h
}

// SetSignal records the latest pending interrupt; LatestSignal resets
// it to SignalNone on read, per spec 6.1's "resets on read". cmd/qlogo
// installs no OS-signal handler and never calls SetSignal.
func (h *Headless) SetSignal(s Signal) { atomic.StoreInt32(&h.signal, int32(s)) }

// LatestSignal implements Host.
func (h *Headless) LatestSignal() Signal {
	return Signal(atomic.SwapInt32(&h.signal, int32(SignalNone)))
}

// ReadRawLine implements Host: prompt is written to the console first
// (REPL prompts and READWORD/READLIST's implicit prompt both flow
// through here), then one line is read.
func (h *Headless) ReadRawLine(prompt string) (string, bool) {
	if prompt != "" {
		h.Print(prompt)
	}
	if h.in == nil {
		return "", false
	}
	var line []rune
	for {
		r, _, err := h.in.ReadRune()
		if err != nil {
			if len(line) == 0 {
				return "", false
			}
			return string(line), true
		}
		if r == '\n' {
			return string(line), true
		}
		line = append(line, r)
	}
}

// ReadChar implements Host.
func (h *Headless) ReadChar() (rune, bool) {
	if h.in == nil {
		return 0, false
	}
	r, _, err := h.in.ReadRune()
	if err != nil {
		return 0, false
	}
	return r, true
}

// Print implements Host, flushing immediately the way the teacher's
// ioCore flushes after every write to keep an interactive session
// responsive.
func (h *Headless) Print(s string) {
	if h.out == nil {
		return
	}
	for _, r := range s {
		_, _ = writeDisplayRune(h.out, r)
	}
	_ = h.out.Flush()
}

// writeDisplayRune writes r in whatever form a plain terminal shows
// sanely: ASCII as itself, NEL (the one C1 control PRINT is likely to
// actually emit, via a line of text copied from a CR-less source) as
// "\r\n", every other C1 control in its classic 7-bit escaped form, and
// anything else as its utf8 encoding.
func writeDisplayRune(w io.Writer, r rune) (int, error) {
	if r < 0x80 {
		if bw, ok := w.(io.ByteWriter); ok {
			return 1, bw.WriteByte(byte(r))
		}
		return w.Write([]byte{byte(r)})
	}
	if r == 0x85 {
		return w.Write([]byte{'\r', '\n'})
	}
	if r <= 0x9f {
		return w.Write([]byte{0x1b, byte(r ^ 0xc0)})
	}
	return w.Write([]byte(string(r)))
}

// AddStandoutMarkup wraps s in the classic ANSI reverse-video SGR pair,
// the nearest headless equivalent of the GUI's own standout rendering.
func (h *Headless) AddStandoutMarkup(s string) string {
	return "\x1b[7m" + s + "\x1b[0m"
}

// MWait implements Host: a headless console has nothing useful to do
// while waiting besides actually waiting, so this is the one Host
// method in this file that reaches for time.Sleep rather than being a
// stub -- WAIT still must suspend real wall-clock time for a script
// that relies on it for pacing.
func (h *Headless) MWait(ms int) { mwaitSleep(ms) }

// FileDialogRequest implements Host: headless has no dialog surface.
func (h *Headless) FileDialogRequest() (string, bool) { return "", false }

func (h *Headless) SetTransform(Matrix3) error         { return ErrNoGraphics }
func (h *Headless) SetVisible(bool) error               { return ErrNoGraphics }
func (h *Headless) EmitVertex() error                   { return ErrNoGraphics }
func (h *Headless) BeginPolygon(Color) error            { return ErrNoGraphics }
func (h *Headless) EndPolygon() error                   { return ErrNoGraphics }
func (h *Headless) DrawLabel(string) error              { return ErrNoGraphics }
func (h *Headless) DrawArc(float64, float64) error      { return ErrNoGraphics }
func (h *Headless) SetPenColor(Color) error             { return ErrNoGraphics }
func (h *Headless) SetPenSize(float64) error            { return ErrNoGraphics }
func (h *Headless) SetPenMode(PenMode) error            { return ErrNoGraphics }
func (h *Headless) SetPenDown(bool) error                { return ErrNoGraphics }
func (h *Headless) ClearScreen() error                  { return ErrNoGraphics }
func (h *Headless) SetBounds(float64, float64) error    { return ErrNoGraphics }
func (h *Headless) SetIsBounded(bool) error              { return ErrNoGraphics }
func (h *Headless) SetBackgroundColor(Color) error      { return ErrNoGraphics }
func (h *Headless) SetBackgroundImage([]byte) error     { return ErrNoGraphics }
func (h *Headless) GetImage() ([]byte, error)           { return nil, ErrNoGraphics }
func (h *Headless) GetSVG() ([]byte, error)             { return nil, ErrNoGraphics }

func (h *Headless) SetMode(ScreenMode) error        { return ErrNoGraphics }
func (h *Headless) SetSplitterRatio(float64) error  { return ErrNoGraphics }

func (h *Headless) SetCursorPosition(int, int) error { return ErrNoGraphics }
func (h *Headless) GetCursorPosition() (int, int, error) {
	return 0, 0, ErrNoGraphics
}
func (h *Headless) SetTextColor(Color, Color) error { return ErrNoGraphics }
func (h *Headless) SetFontName(string) error        { return ErrNoGraphics }
func (h *Headless) SetFontSize(float64) error       { return ErrNoGraphics }
func (h *Headless) SetOverwriteMode(bool) error     { return ErrNoGraphics }
func (h *Headless) ListFontNames() ([]string, error) {
	return nil, ErrNoGraphics
}

func (h *Headless) LastClickPosition() (float64, float64, error) { return 0, 0, ErrNoGraphics }
func (h *Headless) LastClickButton() (int, error)                { return 0, ErrNoGraphics }
func (h *Headless) IsButtonDown() (bool, error)                  { return false, ErrNoGraphics }
func (h *Headless) MousePosition() (float64, float64, error)     { return 0, 0, ErrNoGraphics }

var _ Host = (*Headless)(nil)
