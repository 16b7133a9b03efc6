package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// PostJSON sends body to url with the given headers and returns the upstream
// status code and the full response body. The call is bounded by timeout.
func PostJSON(ctx context.Context, cli *http.Client, url string, headers map[string]string, body []byte, timeout time.Duration) (int, []byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, errors.Wrap(err, "new request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response body")
	}
	return resp.StatusCode, respBody, nil
}

// GetJSON fetches url and returns the upstream status code and body.
func GetJSON(ctx context.Context, cli *http.Client, url string, headers map[string]string, timeout time.Duration) (int, []byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "new request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response body")
	}
	return resp.StatusCode, respBody, nil
}

// Stream is an open streaming response. Lines yields newline-delimited
// strings with trailing CR/LF stripped; blank lines are dropped. Close must
// be called when the relay finishes, and cancels the upstream request.
type Stream struct {
	StatusCode int

	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
}

// Next advances to the next non-blank line. It returns false at EOF or on a
// read error.
func (s *Stream) Next() bool {
	for s.scanner.Scan() {
		if strings.TrimSpace(s.scanner.Text()) != "" {
			return true
		}
	}
	return false
}

// Line returns the current line with trailing CR/LF stripped.
func (s *Stream) Line() string {
	return strings.TrimRight(s.scanner.Text(), "\r\n")
}

func (s *Stream) Close() {
	_ = s.body.Close()
	if s.cancel != nil {
		s.cancel()
	}
}

// OpenStream opens a streaming POST. A non-200 status still yields a Stream;
// callers must check StatusCode before iterating.
func OpenStream(ctx context.Context, cli *http.Client, url string, headers map[string]string, body []byte, timeout time.Duration) (*Stream, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, errors.Wrap(err, "new request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := cli.Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, errors.Wrap(err, "do request")
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{
		StatusCode: resp.StatusCode,
		body:       resp.Body,
		scanner:    scanner,
		cancel:     cancel,
	}, nil
}
