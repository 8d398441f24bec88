package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnterminatedQuote is returned by Split for an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Executor runs one command line split into arguments.
type Executor func(args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input   io.Reader
	output  io.Writer
	prompt  string
	exec    Executor
	history *History
}

// New creates a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer, prompt string, exec Executor, history *History) *REPL {
	if history == nil {
		history = NewHistory("")
	}
	return &REPL{input: in, output: out, prompt: prompt, exec: exec, history: history}
}

// Run reads lines until EOF, exit or quit. Command errors are printed and
// do not end the loop.
func (r *REPL) Run() error {
	_ = r.history.Load()
	defer r.history.Save()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line != "" {
			r.history.Add(line)
			if line == "exit" || line == "quit" {
				return nil
			}
			r.dispatch(line)
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

func (r *REPL) dispatch(line string) {
	if line == "history" {
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return
	}
	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return
	}
	if err := r.exec(args); err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
	}
}

// Split breaks line into words. Single quotes keep their content literally,
// double quotes allow backslash escapes, and a backslash outside quotes
// escapes the next character.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(c)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
