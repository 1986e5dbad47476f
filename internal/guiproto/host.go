package guiproto

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dcorbin/qlogo/internal/host"
)

// Client implements host.Host over the wire codec this package defines:
// every call the core makes becomes an output frame sent to the GUI
// process, with reply-bearing calls blocking on the matching input frame.
// Mouse position/buttons and the interrupt signal are instead kept as
// state the GUI pushes asynchronously (KindMouseEvent/KindSignal), per
// spec 6.1's "push" model for those -- there is no request/reply pair
// for them in the Kind enumeration.
type Client struct {
	fw *FrameWriter

	mu     sync.Mutex
	signal host.Signal
	mouseX, mouseY float64
	mouseButton    int
	mouseDown      bool

	replies map[Kind]chan Frame
	readErr chan error
}

// NewClient wraps rw (the GUI process's stdin/stdout from the core's
// point of view) and starts the background frame reader that routes
// incoming frames to whichever call is waiting on them, or to the
// asynchronous mouse/signal state.
func NewClient(rw io.ReadWriter) *Client {
	c := &Client{
		fw:      NewFrameWriter(rw),
		replies: make(map[Kind]chan Frame),
		readErr: make(chan error, 1),
	}
	for _, k := range []Kind{
		KindRawLineReply, KindCharReply, KindDialogReply,
		KindGetImageReply, KindGetSVGReply, KindGetCursorPositionReply,
		KindListFontNamesReply,
	} {
		c.replies[k] = make(chan Frame, 1)
	}
	go c.readLoop(NewFrameReader(rw))
	return c
}

func (c *Client) readLoop(fr *FrameReader) {
	for {
		f, err := fr.ReadFrame()
		if err != nil {
			c.readErr <- err
			return
		}
		switch f.Kind {
		case KindMouseEvent:
			c.handleMouseEvent(f.Body)
		case KindSignal:
			c.handleSignal(f.Body)
		case KindClose:
			c.readErr <- io.EOF
			return
		default:
			if ch, ok := c.replies[f.Kind]; ok {
				ch <- f
			}
		}
	}
}

func (c *Client) handleMouseEvent(body []byte) {
	if len(body) < 18 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mouseButton = int(body[0])
	c.mouseDown = body[1] != 0
	c.mouseX = math.Float64frombits(binary.LittleEndian.Uint64(body[2:10]))
	c.mouseY = math.Float64frombits(binary.LittleEndian.Uint64(body[10:18]))
}

func (c *Client) handleSignal(body []byte) {
	if len(body) < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signal = host.Signal(body[0])
}

// await blocks for either kind's reply frame or the reader dying.
func (c *Client) await(kind Kind) (Frame, error) {
	select {
	case f := <-c.replies[kind]:
		return f, nil
	case err := <-c.readErr:
		return Frame{}, err
	}
}

func (c *Client) send(kind Kind, body []byte) error {
	return c.fw.WriteFrame(Frame{Kind: kind, Body: body})
}

// -- text I/O --

func (c *Client) ReadRawLine(prompt string) (string, bool) {
	if err := c.send(KindReadRawLinePrompt, PutString(nil, prompt)); err != nil {
		return "", false
	}
	f, err := c.await(KindRawLineReply)
	if err != nil {
		return "", false
	}
	s, _, derr := GetString(f.Body)
	return s, derr == nil
}

func (c *Client) ReadChar() (rune, bool) {
	if err := c.send(KindReadCharRequest, nil); err != nil {
		return 0, false
	}
	f, err := c.await(KindCharReply)
	if err != nil || len(f.Body) < 4 {
		return 0, false
	}
	return rune(binary.LittleEndian.Uint32(f.Body)), true
}

func (c *Client) Print(s string) { _ = c.send(KindPrint, PutString(nil, s)) }

// AddStandoutMarkup is a plain passthrough: the GUI, not the core, owns
// how standout text is rendered.
func (c *Client) AddStandoutMarkup(s string) string { return s }

func (c *Client) MWait(ms int) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (c *Client) FileDialogRequest() (string, bool) {
	if err := c.send(KindFileDialogRequest, nil); err != nil {
		return "", false
	}
	f, err := c.await(KindDialogReply)
	if err != nil {
		return "", false
	}
	s, _, derr := GetString(f.Body)
	return s, derr == nil
}

// -- turtle graphics --

func (c *Client) SetTransform(m host.Matrix3) error {
	return c.send(KindSetTransform, PutMatrix3(nil, [9]float64(m)))
}

func (c *Client) SetVisible(visible bool) error { return c.send(KindSetVisible, boolBody(visible)) }
func (c *Client) EmitVertex() error              { return c.send(KindEmitVertex, nil) }

func (c *Client) BeginPolygon(col host.Color) error {
	return c.send(KindBeginPolygon, PutColor(nil, col.R, col.G, col.B, col.A))
}
func (c *Client) EndPolygon() error { return c.send(KindEndPolygon, nil) }

func (c *Client) DrawLabel(s string) error { return c.send(KindDrawLabel, PutString(nil, s)) }

func (c *Client) DrawArc(angle, radius float64) error {
	return c.send(KindDrawArc, floatsBody(angle, radius))
}

func (c *Client) SetPenColor(col host.Color) error {
	return c.send(KindSetPenColor, PutColor(nil, col.R, col.G, col.B, col.A))
}
func (c *Client) SetPenSize(size float64) error { return c.send(KindSetPenSize, floatsBody(size)) }
func (c *Client) SetPenMode(m host.PenMode) error {
	return c.send(KindSetPenMode, []byte{byte(m)})
}
func (c *Client) SetPenDown(down bool) error { return c.send(KindSetPenDown, boolBody(down)) }
func (c *Client) ClearScreen() error          { return c.send(KindClearScreen, nil) }

func (c *Client) SetBounds(x, y float64) error { return c.send(KindSetBounds, floatsBody(x, y)) }
func (c *Client) SetIsBounded(bounded bool) error {
	return c.send(KindSetIsBounded, boolBody(bounded))
}

func (c *Client) SetBackgroundColor(col host.Color) error {
	return c.send(KindSetBackgroundColor, PutColor(nil, col.R, col.G, col.B, col.A))
}
func (c *Client) SetBackgroundImage(b []byte) error {
	return c.send(KindSetBackgroundImage, append([]byte(nil), b...))
}

func (c *Client) GetImage() ([]byte, error) {
	if err := c.send(KindGetImageRequest, nil); err != nil {
		return nil, err
	}
	f, err := c.await(KindGetImageReply)
	return f.Body, err
}

func (c *Client) GetSVG() ([]byte, error) {
	if err := c.send(KindGetSVGRequest, nil); err != nil {
		return nil, err
	}
	f, err := c.await(KindGetSVGReply)
	return f.Body, err
}

// -- screen mode --

func (c *Client) SetMode(m host.ScreenMode) error { return c.send(KindSetMode, []byte{byte(m)}) }
func (c *Client) SetSplitterRatio(r float64) error {
	return c.send(KindSetSplitterRatio, floatsBody(r))
}

// -- text attributes --

func (c *Client) SetCursorPosition(row, col int) error {
	return c.send(KindSetCursorPosition, intsBody(row, col))
}

func (c *Client) GetCursorPosition() (row, col int, err error) {
	if err := c.send(KindGetCursorPositionRequest, nil); err != nil {
		return 0, 0, err
	}
	f, err := c.await(KindGetCursorPositionReply)
	if err != nil || len(f.Body) < 8 {
		return 0, 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(f.Body[0:4]))), int(int32(binary.LittleEndian.Uint32(f.Body[4:8]))), nil
}

func (c *Client) SetTextColor(fg, bg host.Color) error {
	buf := PutColor(nil, fg.R, fg.G, fg.B, fg.A)
	buf = PutColor(buf, bg.R, bg.G, bg.B, bg.A)
	return c.send(KindSetTextColor, buf)
}
func (c *Client) SetFontName(name string) error { return c.send(KindSetFontName, PutString(nil, name)) }
func (c *Client) SetFontSize(size float64) error { return c.send(KindSetFontSize, floatsBody(size)) }
func (c *Client) SetOverwriteMode(on bool) error { return c.send(KindSetOverwriteMode, boolBody(on)) }

func (c *Client) ListFontNames() ([]string, error) {
	if err := c.send(KindListFontNamesRequest, nil); err != nil {
		return nil, err
	}
	f, err := c.await(KindListFontNamesReply)
	if err != nil {
		return nil, err
	}
	if len(f.Body) < 4 {
		return nil, nil
	}
	n := binary.LittleEndian.Uint32(f.Body[:4])
	buf := f.Body[4:]
	names := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, rest, derr := GetString(buf)
		if derr != nil {
			return names, derr
		}
		names = append(names, s)
		buf = rest
	}
	return names, nil
}

// -- interrupt query --

// LatestSignal reports and clears the most recent KindSignal frame the
// GUI pushed, per spec 5/6.1's "resets on read".
func (c *Client) LatestSignal() host.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.signal
	c.signal = host.SignalNone
	return s
}

// -- mouse --

func (c *Client) LastClickPosition() (x, y float64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseX, c.mouseY, nil
}

func (c *Client) LastClickButton() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseButton, nil
}

func (c *Client) IsButtonDown() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseDown, nil
}

func (c *Client) MousePosition() (x, y float64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseX, c.mouseY, nil
}

func boolBody(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func floatsBody(vs ...float64) []byte {
	buf := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	return buf
}

func intsBody(vs ...int) []byte {
	buf := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
		buf = append(buf, b[:]...)
	}
	return buf
}
