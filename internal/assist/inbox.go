package assist

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Request asks for one line range of the document to be reformatted.
type Request struct {
	LineStart   int
	LineEnd     int
	Text        string
	Instruction string
}

// Result is a finished request. Err is set when formatting failed.
type Result struct {
	Request
	Formatted string
	Err       error
}

// Inbox runs formatting requests in the background and hands the results
// back to the owner of the document, which collects them with Drain from its
// own update loop. Workers never touch document or engine state.
type Inbox struct {
	f   Formatter
	log zerolog.Logger

	mu      sync.Mutex
	pending []Result
	wg      sync.WaitGroup
}

// NewInbox creates an inbox over f.
func NewInbox(f Formatter, log zerolog.Logger) *Inbox {
	return &Inbox{f: f, log: log}
}

// Submit starts formatting r in a new goroutine.
func (in *Inbox) Submit(ctx context.Context, r Request) {
	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		out, err := in.f.Format(ctx, r.Text, r.Instruction)
		if err != nil {
			in.log.Warn().Err(err).Str("formatter", in.f.Name()).Int("line", r.LineStart).Msg("format failed")
		}
		in.mu.Lock()
		in.pending = append(in.pending, Result{Request: r, Formatted: out, Err: err})
		in.mu.Unlock()
	}()
}

// Drain returns the results finished since the last call without blocking.
func (in *Inbox) Drain() []Result {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.pending
	in.pending = nil
	return out
}

// Wait blocks until every submitted request has finished.
func (in *Inbox) Wait() { in.wg.Wait() }

// Apply replaces the request's line range in text with the formatted
// output. It refuses when the range no longer holds the original text.
func Apply(text string, r Result) (string, bool) {
	if r.Err != nil || r.LineStart < 1 || r.LineEnd < r.LineStart {
		return text, false
	}
	lines := strings.Split(text, "\n")
	if r.LineEnd > len(lines) {
		return text, false
	}
	if strings.Join(lines[r.LineStart-1:r.LineEnd], "\n") != r.Text {
		return text, false
	}
	var b []string
	b = append(b, lines[:r.LineStart-1]...)
	b = append(b, strings.Split(r.Formatted, "\n")...)
	b = append(b, lines[r.LineEnd:]...)
	return strings.Join(b, "\n"), true
}
