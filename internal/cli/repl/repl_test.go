package repl

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func TestREPL_RunExit(t *testing.T) {
	for _, input := range []string{"exit\n", "quit\n", "", "get a"} {
		rec := &recorder{}
		out := &bytes.Buffer{}
		if err := New(strings.NewReader(input), out, "> ", rec.exec, nil).Run(); err != nil {
			t.Errorf("Run(%q) error = %v", input, err)
		}
	}
}

func TestREPL_Dispatch(t *testing.T) {
	rec := &recorder{}
	out := &bytes.Buffer{}
	input := "\n  get a\nset k 'hello world'\n\nexit\nget never\n"
	if err := New(strings.NewReader(input), out, "hashguard> ", rec.exec, nil).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{{"get", "a"}, {"set", "k", "hello world"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if !strings.HasPrefix(out.String(), "hashguard> ") {
		t.Errorf("output = %q, want prompt", out.String())
	}
}

func TestREPL_LastLineWithoutNewline(t *testing.T) {
	rec := &recorder{}
	if err := New(strings.NewReader("get a"), &bytes.Buffer{}, "", rec.exec, nil).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("calls = %q, want one", rec.calls)
	}
}

func TestREPL_ErrorsDoNotStopLoop(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	out := &bytes.Buffer{}
	if err := New(strings.NewReader("get a\nget b\n"), out, "", rec.exec, nil).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
	if strings.Count(out.String(), "error: boom") != 2 {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPL_BadQuote(t *testing.T) {
	rec := &recorder{}
	out := &bytes.Buffer{}
	if err := New(strings.NewReader("set k \"oops\n"), out, "", rec.exec, nil).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 || !strings.Contains(out.String(), ErrUnterminatedQuote.Error()) {
		t.Errorf("calls = %q, output = %q", rec.calls, out.String())
	}
}

func TestREPL_HistoryCommand(t *testing.T) {
	rec := &recorder{}
	out := &bytes.Buffer{}
	if err := New(strings.NewReader("get a\nhistory\n"), out, "", rec.exec, nil).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "   1  get a\n") || !strings.Contains(out.String(), "   2  history\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"get a", []string{"get", "a"}, false},
		{"  set   k\tv ", []string{"set", "k", "v"}, false},
		{`set k "a b"`, []string{"set", "k", "a b"}, false},
		{`set k 'a "b" c'`, []string{"set", "k", `a "b" c`}, false},
		{`set k "say \"hi\""`, []string{"set", "k", `say "hi"`}, false},
		{`set k 'back\slash'`, []string{"set", "k", `back\slash`}, false},
		{`set k a\ b`, []string{"set", "k", "a b"}, false},
		{`set k ""`, []string{"set", "k", ""}, false},
		{"", nil, false},
		{`set k "open`, nil, true},
		{`set k \`, nil, true},
	}
	for _, tt := range tests {
		got, err := Split(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Split(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
