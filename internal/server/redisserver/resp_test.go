package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestReader(input string, limits Limits) *Reader {
	return NewReader(bufio.NewReader(strings.NewReader(input)), limits)
}

func argsToStrings(args [][]byte) []string {
	if args == nil {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

func TestReader_ReadCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"ping", "*1\r\n$4\r\nPING\r\n", []string{"PING"}},
		{"get", "*2\r\n$3\r\nGET\r\n$6\r\nmykey1\r\n", []string{"GET", "mykey1"}},
		{"set", "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$7\r\nmyvalue\r\n", []string{"SET", "k", "myvalue"}},
		{"binary-safe value", "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$4\r\na\r\nb\r\n", []string{"SET", "k", "a\r\nb"}},
		{"empty bulk", "*2\r\n$4\r\nECHO\r\n$0\r\n\r\n", []string{"ECHO", ""}},
		{"empty array", "*0\r\n", nil},
		{"null array", "*-1\r\n", nil},
		{"inline", "PING\r\n", []string{"PING"}},
		{"inline with args", "SET  k   v\r\n", []string{"SET", "k", "v"}},
		{"blank inline", "\r\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := newTestReader(tt.input, Limits{}).ReadCommand()
			if err != nil {
				t.Fatalf("ReadCommand() error = %v", err)
			}
			got := argsToStrings(args)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("ReadCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_Pipeline(t *testing.T) {
	r := newTestReader("*1\r\n$4\r\nPING\r\nECHO hi\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n", Limits{})

	want := [][]string{{"PING"}, {"ECHO", "hi"}, {"GET", "k"}}
	for i, w := range want {
		args, err := r.ReadCommand()
		if err != nil {
			t.Fatalf("command %d: error = %v", i, err)
		}
		if got := argsToStrings(args); strings.Join(got, " ") != strings.Join(w, " ") {
			t.Errorf("command %d = %q, want %q", i, got, w)
		}
	}
	if _, err := r.ReadCommand(); !errors.Is(err, io.EOF) {
		t.Errorf("after pipeline error = %v, want io.EOF", err)
	}
}

func TestReader_Limits(t *testing.T) {
	limits := Limits{MaxArgs: 2, MaxBulkLen: 8, MaxInlineLen: 16}
	tests := []struct {
		name  string
		input string
	}{
		{"too many args", "*3\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n"},
		{"too many inline args", "a b c\r\n"},
		{"bulk too long", "*1\r\n$9\r\n123456789\r\n"},
		{"inline too long", strings.Repeat("x", 32) + "\r\n"},
		{"header too long", "*" + strings.Repeat("1", 100) + "\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestReader(tt.input, limits).ReadCommand()
			if !errors.Is(err, ErrLimitExceeded) {
				t.Errorf("ReadCommand() error = %v, want ErrLimitExceeded", err)
			}
		})
	}
}

func TestReader_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad array length", "*x\r\n"},
		{"bad bulk length", "*1\r\n$x\r\n"},
		{"negative bulk length", "*1\r\n$-5\r\n"},
		{"not a bulk", "*1\r\n:1\r\n"},
		{"missing bulk terminator", "*1\r\n$4\r\nPINGxx"},
		{"bare LF", "PING\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestReader(tt.input, Limits{}).ReadCommand()
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("ReadCommand() error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestReader_Truncated(t *testing.T) {
	_, err := newTestReader("*2\r\n$3\r\nGET\r\n$5\r\nab", Limits{}).ReadCommand()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadCommand() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReader_NullBulkArgument(t *testing.T) {
	args, err := newTestReader("*2\r\n$4\r\nECHO\r\n$-1\r\n", Limits{}).ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand() error = %v", err)
	}
	if len(args) != 2 || args[1] != nil {
		t.Errorf("ReadCommand() = %q, want [ECHO <nil>]", args)
	}
}

func TestWriter(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"simple string", func(w *Writer) { w.SimpleString("OK") }, "+OK\r\n"},
		{"error", func(w *Writer) { w.Error("ERR boom") }, "-ERR boom\r\n"},
		{"error with newline", func(w *Writer) { w.Error("ERR a\r\nb") }, "-ERR a  b\r\n"},
		{"integer", func(w *Writer) { w.Integer(-42) }, ":-42\r\n"},
		{"bulk", func(w *Writer) { w.Bulk("hello") }, "$5\r\nhello\r\n"},
		{"empty bulk", func(w *Writer) { w.Bulk("") }, "$0\r\n\r\n"},
		{"null bulk", func(w *Writer) { w.NullBulk() }, "$-1\r\n"},
		{"array header", func(w *Writer) { w.ArrayHeader(3) }, "*3\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(bufio.NewWriter(&buf))
			tt.write(w)
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriter_StickyError(t *testing.T) {
	w := NewWriter(bufio.NewWriterSize(failWriter{}, 16))
	w.Bulk(strings.Repeat("x", 64))
	w.SimpleString("OK")
	if err := w.Flush(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Flush() error = %v, want io.ErrClosedPipe", err)
	}
}

func TestCommandName(t *testing.T) {
	for in, want := range map[string]string{"get": "GET", "GeT": "GET", "PING": "PING", "": ""} {
		if got := commandName([]byte(in)); got != want {
			t.Errorf("commandName(%q) = %q, want %q", in, got, want)
		}
	}
}
