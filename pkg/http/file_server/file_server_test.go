package file_server

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Motmedel/http_response/pkg/http/date"
	"github.com/Motmedel/http_response/pkg/http/status"
)

func startServer(t *testing.T, root string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	server := &Server{Root: root, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	go func() {
		done <- server.Serve(ctx, listener)
	}()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
	})

	return "http://" + listener.Addr().String()
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()

	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("http new request: %v", err)
	}
	for name, values := range header {
		request.Header[name] = values
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	httpResponse, err := client.Do(request)
	if err != nil {
		t.Fatalf("http client do: %v", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		t.Fatalf("io read all: %v", err)
	}

	return httpResponse, string(body)
}

func TestServe(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<p>hi!</p>"), 0o600); err != nil {
		t.Fatalf("os write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("read me"), 0o600); err != nil {
		t.Fatalf("os write file: %v", err)
	}

	baseUrl := startServer(t, root)

	t.Run("file", func(t *testing.T) {
		httpResponse, body := get(t, baseUrl+"/index.html", nil)

		if httpResponse.StatusCode != status.Ok {
			t.Fatalf("expected status %d, got %d", status.Ok, httpResponse.StatusCode)
		}
		if body != "<p>hi!</p>" {
			t.Fatalf("unexpected body: %q", body)
		}
		if contentType := httpResponse.Header.Get("Content-Type"); contentType != "text/html;charset=UTF-8" {
			t.Fatalf("unexpected content type: %q", contentType)
		}
		if httpResponse.Header.Get("ETag") == "" || httpResponse.Header.Get("Last-Modified") == "" {
			t.Fatalf("expected validators, got: %v", httpResponse.Header)
		}
	})

	t.Run("no extension", func(t *testing.T) {
		httpResponse, body := get(t, baseUrl+"/README", nil)

		if httpResponse.StatusCode != status.Ok || body != "read me" {
			t.Fatalf("unexpected response: %d %q", httpResponse.StatusCode, body)
		}
		if contentType := httpResponse.Header.Get("Content-Type"); contentType != "" {
			t.Fatalf("expected no content type, got %q", contentType)
		}
	})

	t.Run("if-none-match", func(t *testing.T) {
		first, _ := get(t, baseUrl+"/index.html", nil)

		httpResponse, body := get(
			t,
			baseUrl+"/index.html",
			http.Header{"If-None-Match": {first.Header.Get("ETag")}},
		)
		if httpResponse.StatusCode != status.NotModified || body != "" {
			t.Fatalf("unexpected response: %d %q", httpResponse.StatusCode, body)
		}
	})

	t.Run("if-modified-since", func(t *testing.T) {
		httpResponse, _ := get(
			t,
			baseUrl+"/index.html",
			http.Header{"If-Modified-Since": {date.Format(time.Now().Add(time.Hour))}},
		)
		if httpResponse.StatusCode != status.NotModified {
			t.Fatalf("expected status %d, got %d", status.NotModified, httpResponse.StatusCode)
		}
	})

	t.Run("not found", func(t *testing.T) {
		httpResponse, body := get(t, baseUrl+"/missing.html", nil)
		if httpResponse.StatusCode != status.NotFound || body != "Not found.\n" {
			t.Fatalf("unexpected response: %d %q", httpResponse.StatusCode, body)
		}
	})

	t.Run("directory", func(t *testing.T) {
		httpResponse, _ := get(t, baseUrl+"/", nil)
		if httpResponse.StatusCode != status.NotFound {
			t.Fatalf("expected status %d, got %d", status.NotFound, httpResponse.StatusCode)
		}
	})
}

func TestResolve(t *testing.T) {
	server := &Server{Root: "/srv/www"}

	testCases := []struct {
		requestPath string
		expected    string
	}{
		{requestPath: "/index.html", expected: filepath.FromSlash("/srv/www/index.html")},
		{requestPath: "/../../etc/passwd", expected: filepath.FromSlash("/srv/www/etc/passwd")},
		{requestPath: "a/./b/../c.txt", expected: filepath.FromSlash("/srv/www/a/c.txt")},
	}

	for _, testCase := range testCases {
		t.Run(testCase.requestPath, func(t *testing.T) {
			if resolved := server.resolve(testCase.requestPath); resolved != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, resolved)
			}
		})
	}
}

func TestServeUnreadableFile(t *testing.T) {
	root := t.TempDir()

	// Opening a unix socket fails even though it can be stat'ed as a regular entry.
	socketListener, err := net.Listen("unix", filepath.Join(root, "s.txt"))
	if err != nil {
		t.Skipf("net listen unix: %v", err)
	}
	defer socketListener.Close()

	httpResponse, _ := get(t, startServer(t, root)+"/s.txt", nil)

	if httpResponse.StatusCode != status.ServerError {
		t.Fatalf("expected status %d, got %d", status.ServerError, httpResponse.StatusCode)
	}
	for _, name := range []string{"Content-Type", "ETag", "Last-Modified"} {
		if value := httpResponse.Header.Get(name); value != "" {
			t.Fatalf("expected no %s header, got %q", name, value)
		}
	}
}

type lockedBuffer struct {
	mutex  sync.Mutex
	buffer bytes.Buffer
}

func (lockedBuffer *lockedBuffer) Write(p []byte) (int, error) {
	lockedBuffer.mutex.Lock()
	defer lockedBuffer.mutex.Unlock()
	return lockedBuffer.buffer.Write(p)
}

func (lockedBuffer *lockedBuffer) String() string {
	lockedBuffer.mutex.Lock()
	defer lockedBuffer.mutex.Unlock()
	return lockedBuffer.buffer.String()
}

// signalingListener reports every accepted connection on accepted.
type signalingListener struct {
	net.Listener
	accepted chan struct{}
}

func (listener *signalingListener) Accept() (net.Conn, error) {
	conn, err := listener.Listener.Accept()
	if err == nil {
		listener.accepted <- struct{}{}
	}
	return conn, err
}

func TestServeIdleConnection(t *testing.T) {
	tcpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net listen: %v", err)
	}
	listener := &signalingListener{Listener: tcpListener, accepted: make(chan struct{}, 1)}

	var logBuffer lockedBuffer
	server := &Server{
		Root:        t.TempDir(),
		Logger:      slog.New(slog.NewJSONHandler(&logBuffer, nil)),
		ReadTimeout: 100 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, listener)
	}()

	conn, err := net.Dial("tcp", tcpListener.Addr().String())
	if err != nil {
		t.Fatalf("net dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-listener.accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("the connection was not accepted")
	}

	// The client never sends a request; shutting down must still wait for its answer.
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the read timeout")
	}

	if !strings.Contains(logBuffer.String(), "A response was sent.") {
		t.Fatalf("expected the idle connection to be answered before serve returned, got: %s", logBuffer.String())
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("conn set read deadline: %v", err)
	}
	httpResponse, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("http read response: %v", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != status.BadRequest {
		t.Fatalf("expected status %d, got %d", status.BadRequest, httpResponse.StatusCode)
	}
}
