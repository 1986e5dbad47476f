// Package host defines the narrow interface the evaluator and primitive
// layer use to reach outside the process: console text I/O, turtle
// graphics, screen/text attributes, interrupt polling and the mouse.
// internal/eval and internal/primitive are written against Host, never
// against a concrete terminal or GUI process, so the same primitive
// bodies run headless (internal/host.Headless, used by cmd/qlogo and by
// tests) or against internal/guiproto's framing codec without change.
package host

import "errors"

// Signal names the three interrupt tags latest_signal can report, per
// spec 5/6.1.
type Signal int

const (
	SignalNone Signal = iota
	SignalTopLevel
	SignalPause
	SignalSystem
)

// ScreenMode names TEXTSCREEN/FULLSCREEN/SPLITSCREEN.
type ScreenMode int

const (
	ModeText ScreenMode = iota
	ModeFull
	ModeSplit
)

// PenMode names the turtle's pen compositing mode.
type PenMode int

const (
	PenPaint PenMode = iota
	PenErase
	PenReverse
)

// Color is an RGBA quadruple, matching the GUI framing protocol's wire
// representation (spec 6.2).
type Color struct{ R, G, B, A uint8 }

// Matrix3 is a row-major 3x3 transform, as set_transform expects.
type Matrix3 [9]float64

// ErrNoGraphics is returned by every turtle/canvas/screen/mouse call on
// a Host that has none, per spec 6.1 "Any host that lacks graphics
// answers turtle/canvas calls by raising NO-GRAPHICS."
var ErrNoGraphics = errors.New("NO-GRAPHICS")

// Host is the complete external-collaborator surface of spec 6.1: every
// operation the core ever calls outward, and no others.
type Host interface {
	// Text I/O.
	ReadRawLine(prompt string) (string, bool)
	ReadChar() (rune, bool)
	Print(s string)
	AddStandoutMarkup(s string) string

	// Timing and file dialogs.
	MWait(ms int)
	FileDialogRequest() (path string, ok bool)

	// Turtle graphics.
	SetTransform(m Matrix3) error
	SetVisible(visible bool) error
	EmitVertex() error
	BeginPolygon(c Color) error
	EndPolygon() error
	DrawLabel(s string) error
	DrawArc(angle, radius float64) error
	SetPenColor(c Color) error
	SetPenSize(size float64) error
	SetPenMode(m PenMode) error
	SetPenDown(down bool) error
	ClearScreen() error
	SetBounds(x, y float64) error
	SetIsBounded(bounded bool) error
	SetBackgroundColor(c Color) error
	SetBackgroundImage(b []byte) error
	GetImage() ([]byte, error)
	GetSVG() ([]byte, error)

	// Screen mode.
	SetMode(m ScreenMode) error
	SetSplitterRatio(r float64) error

	// Text attributes.
	SetCursorPosition(row, col int) error
	GetCursorPosition() (row, col int, err error)
	SetTextColor(fg, bg Color) error
	SetFontName(name string) error
	SetFontSize(size float64) error
	SetOverwriteMode(on bool) error
	ListFontNames() ([]string, error)

	// Interrupt query.
	LatestSignal() Signal

	// Mouse.
	LastClickPosition() (x, y float64, err error)
	LastClickButton() (int, error)
	IsButtonDown() (bool, error)
	MousePosition() (x, y float64, err error)
}
