package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Protocol limits. A client exceeding them is disconnected.
const (
	// DefaultMaxArgs bounds the number of elements in a command array.
	DefaultMaxArgs = 1024

	// DefaultMaxBulkLen bounds a single bulk string. It leaves room above the
	// default value limit so oversized values reach validation and get a
	// proper error instead of a dropped connection.
	DefaultMaxBulkLen = 256 * 1024

	// DefaultMaxInlineLen bounds an inline command line.
	DefaultMaxInlineLen = 4 * 1024

	maxHeaderLen = 64
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

var crlf = []byte("\r\n")

// Limits bounds what a Reader accepts. Zero fields select the defaults.
type Limits struct {
	MaxArgs      int
	MaxBulkLen   int
	MaxInlineLen int
}

func (l Limits) withDefaults() Limits {
	if l.MaxArgs <= 0 {
		l.MaxArgs = DefaultMaxArgs
	}
	if l.MaxBulkLen <= 0 {
		l.MaxBulkLen = DefaultMaxBulkLen
	}
	if l.MaxInlineLen <= 0 {
		l.MaxInlineLen = DefaultMaxInlineLen
	}
	return l
}

// Reader decodes RESP2 commands.
type Reader struct {
	br     *bufio.Reader
	limits Limits
}

// NewReader wraps br.
func NewReader(br *bufio.Reader, limits Limits) *Reader {
	return &Reader{br: br, limits: limits.withDefaults()}
}

// Peek blocks until at least one byte is buffered.
func (r *Reader) Peek() error {
	_, err := r.br.Peek(1)
	return err
}

// ReadCommand reads one command in either multibulk or inline form. An empty
// command yields nil args and no error.
func (r *Reader) ReadCommand() ([][]byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return nil, err
	}
	if b[0] == '*' {
		return r.readMultiBulk()
	}
	return r.readInline()
}

func (r *Reader) readInline() ([][]byte, error) {
	line, err := r.readLine(r.limits.MaxInlineLen)
	if err != nil {
		return nil, err
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) > r.limits.MaxArgs {
		return nil, fmt.Errorf("%w: %d arguments, limit %d", ErrLimitExceeded, len(fields), r.limits.MaxArgs)
	}
	return fields, nil
}

func (r *Reader) readMultiBulk() ([][]byte, error) {
	n, err := r.readLength('*')
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if n > r.limits.MaxArgs {
		return nil, fmt.Errorf("%w: %d arguments, limit %d", ErrLimitExceeded, n, r.limits.MaxArgs)
	}

	args := make([][]byte, 0, n)
	for range n {
		arg, err := r.readBulk()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (r *Reader) readBulk() ([]byte, error) {
	n, err := r.readLength('$')
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative bulk length", ErrProtocol)
	}
	if n > r.limits.MaxBulkLen {
		return nil, fmt.Errorf("%w: bulk length %d, limit %d", ErrLimitExceeded, n, r.limits.MaxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, err
	}
	if !bytes.HasSuffix(buf, crlf) {
		return nil, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrProtocol)
	}
	return buf[:n], nil
}

// readLength parses a "<prefix><int>\r\n" header.
func (r *Reader) readLength(prefix byte) (int, error) {
	line, err := r.readLine(maxHeaderLen)
	if err != nil {
		return 0, err
	}
	if len(line) < 2 || line[0] != prefix {
		return 0, fmt.Errorf("%w: expected '%c'", ErrProtocol, prefix)
	}
	n, err := strconv.Atoi(string(line[1:]))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line[1:])
	}
	return n, nil
}

// readLine returns the next CRLF-terminated line without the terminator.
func (r *Reader) readLine(maxLen int) ([]byte, error) {
	var line []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > maxLen+2 {
			return nil, fmt.Errorf("%w: line longer than %d bytes", ErrLimitExceeded, maxLen)
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
	}
	if !bytes.HasSuffix(line, crlf) {
		return nil, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return line[:len(line)-2], nil
}

// Writer encodes RESP2 replies. Errors are sticky: after the first failed
// write every call is a no-op and Flush returns that error.
type Writer struct {
	bw  *bufio.Writer
	err error
}

// NewWriter wraps bw.
func NewWriter(bw *bufio.Writer) *Writer {
	return &Writer{bw: bw}
}

func (w *Writer) write(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = w.bw.WriteString(p)
	}
}

// SimpleString writes +s.
func (w *Writer) SimpleString(s string) { w.write("+", s, "\r\n") }

// Error writes -msg. Line breaks in msg are replaced by spaces.
func (w *Writer) Error(msg string) {
	msg = strings.NewReplacer("\r", " ", "\n", " ").Replace(msg)
	w.write("-", msg, "\r\n")
}

// Integer writes :n.
func (w *Writer) Integer(n int64) { w.write(":", strconv.FormatInt(n, 10), "\r\n") }

// Bulk writes s as a bulk string.
func (w *Writer) Bulk(s string) { w.write("$", strconv.Itoa(len(s)), "\r\n", s, "\r\n") }

// NullBulk writes the nil bulk string.
func (w *Writer) NullBulk() { w.write("$-1\r\n") }

// ArrayHeader announces n elements.
func (w *Writer) ArrayHeader(n int) { w.write("*", strconv.Itoa(n), "\r\n") }

// Flush writes buffered replies to the connection.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.bw.Flush()
	return w.err
}

// commandName upper-cases an ASCII command name.
func commandName(b []byte) string {
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return string(bytes.ToUpper(b))
	}
	return string(b)
}
