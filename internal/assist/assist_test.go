package assist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIFormatter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "# raw")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  # Clean\n"}}]}`))
	}))
	defer srv.Close()

	f := New("openai", "m", srv.URL, "k")
	out, err := f.Format(context.Background(), "# raw", "")
	require.NoError(t, err)
	assert.Equal(t, "# Clean", out)
	assert.Equal(t, "openai:m", f.Name())
}

func TestOllamaFormatter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.True(t, len(req.Prompt) > 0)
		w.Write([]byte(`{"response":"done"}`))
	}))
	defer srv.Close()

	out, err := New("ollama", "", srv.URL, "").Format(context.Background(), "x", "fix it")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestFormatterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOpenAIFormatter(srv.URL, "", "m").Format(context.Background(), "x", "")
	assert.ErrorContains(t, err, "503")
}

func TestNewDisabled(t *testing.T) {
	assert.Nil(t, New("", "", "", ""))
}

type stubFormatter struct {
	out string
	err error
}

func (s stubFormatter) Name() string { return "stub" }
func (s stubFormatter) Format(ctx context.Context, text, instruction string) (string, error) {
	return s.out, s.err
}

func TestInboxDrain(t *testing.T) {
	in := NewInbox(stubFormatter{out: "# New"}, zerolog.Nop())
	assert.Empty(t, in.Drain())

	in.Submit(context.Background(), Request{LineStart: 1, LineEnd: 1, Text: "#old"})
	in.Submit(context.Background(), Request{LineStart: 3, LineEnd: 3, Text: "x"})
	in.Wait()

	got := in.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "# New", got[0].Formatted)
	assert.Empty(t, in.Drain(), "drain empties the inbox")
}

func TestInboxCarriesErrors(t *testing.T) {
	in := NewInbox(stubFormatter{err: errors.New("boom")}, zerolog.Nop())
	in.Submit(context.Background(), Request{LineStart: 1, LineEnd: 1, Text: "a"})
	in.Wait()

	got := in.Drain()
	require.Len(t, got, 1)
	assert.Error(t, got[0].Err)
	_, ok := Apply("a", got[0])
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	doc := "# T\nold one\nold two\ntail"
	r := Result{Request: Request{LineStart: 2, LineEnd: 3, Text: "old one\nold two"}, Formatted: "new"}

	out, ok := Apply(doc, r)
	require.True(t, ok)
	assert.Equal(t, "# T\nnew\ntail", out)

	_, ok = Apply("# T\nedited\nold two\ntail", r)
	assert.False(t, ok, "range changed since the request")

	_, ok = Apply("# T", r)
	assert.False(t, ok)
}
