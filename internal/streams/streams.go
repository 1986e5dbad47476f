// Package streams manages the open-file table and the current
// read/write redirection that the evaluator and primitive layer share.
//
// A Logo program never touches an *os.File directly: OPENREAD,
// OPENWRITE, OPENAPPEND and OPENUPDATE register a name against a
// Stream in a Manager, SETREAD/SETWRITE change which Stream primitives
// like READWORD and PRINT read from or write to, and CLOSE tears the
// entry down. The host console (whatever READRAWLINE/PRINT mean when
// no redirection is active) is reached through the Console interface
// so this package never imports the concrete host implementation.
package streams

import (
	"fmt"
	"io"
	"sync"

	"github.com/dcorbin/qlogo/internal/fileinput"
	"github.com/dcorbin/qlogo/internal/flushio"
)

// Console is the host's interactive read/write surface, used whenever
// no file redirection is in effect for the given direction.
type Console interface {
	ReadRawLine() (line string, ok bool)
	ReadChar() (r rune, ok bool)
	Print(s string)
}

// Mode names how a Stream was opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
	ModeUpdate
)

// Stream is one entry in the open-file table.
type Stream struct {
	Name string
	Mode Mode

	in     *fileinput.Input
	out    flushio.WriteFlusher
	peeked *rune

	closer io.Closer
}

// ReadRune satisfies io.RuneReader for read and update streams, fed
// straight through fileinput.Input so "at line N" diagnostics stay
// available to the reader/run-parser layers.
func (s *Stream) ReadRune() (rune, int, error) {
	if s.peeked != nil {
		r := *s.peeked
		s.peeked = nil
		return r, len(string(r)), nil
	}
	if s.in == nil {
		return 0, 0, io.EOF
	}
	return s.in.ReadRune()
}

// peek reads one rune and buffers it so a later ReadRune sees it
// again, used by AtEnd to test for EOF without consuming input.
func (s *Stream) peek() (rune, error) {
	if s.peeked != nil {
		return *s.peeked, nil
	}
	if s.in == nil {
		return 0, io.EOF
	}
	r, _, err := s.in.ReadRune()
	if err != nil {
		return 0, err
	}
	s.peeked = &r
	return r, nil
}

// Write satisfies io.Writer for write and update streams.
func (s *Stream) Write(p []byte) (int, error) {
	if s.out == nil {
		return 0, fmt.Errorf("stream %q is not open for writing", s.Name)
	}
	return s.out.Write(p)
}

// WriteRune writes a single rune through the stream's writer, escaping
// C1 control characters into their classic 7-bit form the same way the
// headless console does, so a file written through PRINT and one
// viewed in a terminal show control characters the same way.
func (s *Stream) WriteRune(r rune) error {
	if s.out == nil {
		return fmt.Errorf("stream %q is not open for writing", s.Name)
	}
	_, err := writeDisplayRune(s.out, r)
	return err
}

// writeDisplayRune mirrors internal/host's console rune display: ASCII
// as itself, NEL as "\r\n", the rest of the C1 range in 7-bit escaped
// form, everything else as utf8.
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

// Flush flushes any buffered writer.
func (s *Stream) Flush() error {
	if s.out == nil {
		return nil
	}
	return s.out.Flush()
}

// Close releases the stream's underlying resource, if any, and is
// idempotent.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

// Manager owns the open-file table (spec 5, "Shared resources: the
// open-file table") plus the current read/write redirection. SETREAD
// and SETWRITE push a name onto a stack so a primitive that needs to
// temporarily redirect (e.g. a macro reading from a nested stream) can
// restore the caller's redirection with RestoreRead/RestoreWrite
// rather than guessing what the previous name was.
type Manager struct {
	mu sync.Mutex

	table map[string]*Stream

	console Console

	readStack  []string // "" denotes the console
	writeStack []string
}

// NewManager returns a Manager with the console as both the current
// reader and current writer.
func NewManager(console Console) *Manager {
	return &Manager{
		table:      make(map[string]*Stream),
		console:    console,
		readStack:  []string{""},
		writeStack: []string{""},
	}
}

// Open registers name against a freshly-opened stream backed by rw,
// per OPENREAD/OPENWRITE/OPENAPPEND/OPENUPDATE. Re-opening an
// already-open name is an error; Logo requires an explicit CLOSE
// first.
func (m *Manager) Open(name string, mode Mode, rw io.ReadWriteCloser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.table[name]; exists {
		return fmt.Errorf("file %q is already open", name)
	}
	s := &Stream{Name: name, Mode: mode, closer: rw}
	switch mode {
	case ModeRead:
		s.in = &fileinput.Input{Queue: []io.Reader{rw}}
	case ModeWrite, ModeAppend:
		s.out = flushio.NewWriteFlusher(rw)
	case ModeUpdate:
		s.in = &fileinput.Input{Queue: []io.Reader{rw}}
		s.out = flushio.NewWriteFlusher(rw)
	}
	m.table[name] = s
	return nil
}

// Close flushes and closes the named stream and drops it from the
// table. Closing the stream current for either direction falls back
// to the console, matching UCBLogo's "closing the current file resets
// to the terminal" behavior.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.table[name]
	if !ok {
		return fmt.Errorf("file %q is not open", name)
	}
	delete(m.table, name)
	m.popName(&m.readStack, name)
	m.popName(&m.writeStack, name)
	ferr := s.Flush()
	cerr := s.Close()
	if cerr != nil {
		return cerr
	}
	return ferr
}

// popName replaces any occurrence of name in stack with "" (console),
// leaving the stack depth unchanged so a later RestoreRead/Write still
// balances.
func (m *Manager) popName(stack *[]string, name string) {
	for i, n := range *stack {
		if n == name {
			(*stack)[i] = ""
		}
	}
}

// SetRead pushes name ("" for the console) as the current read
// stream.
func (m *Manager) SetRead(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name != "" {
		if _, ok := m.table[name]; !ok {
			return fmt.Errorf("file %q is not open", name)
		}
	}
	m.readStack = append(m.readStack, name)
	return nil
}

// SetWrite pushes name ("" for the console) as the current write
// stream.
func (m *Manager) SetWrite(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name != "" {
		if _, ok := m.table[name]; !ok {
			return fmt.Errorf("file %q is not open", name)
		}
	}
	m.writeStack = append(m.writeStack, name)
	return nil
}

// RestoreRead pops the most recent SetRead, returning to whatever was
// current before it.
func (m *Manager) RestoreRead() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.readStack) > 1 {
		m.readStack = m.readStack[:len(m.readStack)-1]
	}
}

// RestoreWrite pops the most recent SetWrite.
func (m *Manager) RestoreWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writeStack) > 1 {
		m.writeStack = m.writeStack[:len(m.writeStack)-1]
	}
}

// CurrentReadName reports the name current for reading, "" meaning
// the console (READER primitive).
func (m *Manager) CurrentReadName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readStack[len(m.readStack)-1]
}

// CurrentWriteName reports the name current for writing (WRITER
// primitive).
func (m *Manager) CurrentWriteName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeStack[len(m.writeStack)-1]
}

// ReadRawLine reads one line (without its terminator) from the
// current read stream, falling back to the console. ok is false at
// end of file.
func (m *Manager) ReadRawLine() (string, bool) {
	name := m.CurrentReadName()
	if name == "" {
		return m.console.ReadRawLine()
	}
	s := m.streamFor(name)
	if s == nil || s.in == nil {
		return "", false
	}
	var line []rune
	for {
		r, _, err := s.ReadRune()
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

// ReadChar reads a single character from the current read stream.
func (m *Manager) ReadChar() (rune, bool) {
	name := m.CurrentReadName()
	if name == "" {
		return m.console.ReadChar()
	}
	s := m.streamFor(name)
	if s == nil || s.in == nil {
		return 0, false
	}
	r, _, err := s.ReadRune()
	if err != nil {
		return 0, false
	}
	return r, true
}

// AtEnd reports whether the current read stream (a file, never the
// console) is exhausted, for EOFP/EOF?.
func (m *Manager) AtEnd() bool {
	name := m.CurrentReadName()
	if name == "" {
		return false
	}
	s := m.streamFor(name)
	if s == nil || s.in == nil {
		return true
	}
	_, err := s.peek()
	return err != nil
}

// Print writes s to the current write stream, flushing write/update
// streams immediately the way the console does after every PRINT.
func (m *Manager) Print(s string) {
	name := m.CurrentWriteName()
	if name == "" {
		m.console.Print(s)
		return
	}
	stream := m.streamFor(name)
	if stream == nil || stream.out == nil {
		return
	}
	for _, r := range s {
		_ = stream.WriteRune(r)
	}
	_ = stream.Flush()
}

func (m *Manager) streamFor(name string) *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table[name]
}

