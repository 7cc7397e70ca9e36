package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irislabs/irisparse/dnswire"
)

func TestRunQueryAndDNSRoundTrip(t *testing.T) {
	out := &bytes.Buffer{}
	if err := runQuery("example.com", "A", 7, true, out); err != nil {
		t.Fatalf("runQuery failed: %v", err)
	}
	hexstr := strings.TrimSpace(out.String())

	out.Reset()
	data, err := readInputHex(hexstr)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := runDNS(data, out); err != nil {
		t.Fatalf("runDNS failed: %v", err)
	}
	if !strings.Contains(out.String(), ";; question example.com type=1") {
		t.Errorf("missing question line in output:\n%s", out.String())
	}
}

func readInputHex(s string) ([]byte, error) {
	return readInput("dns", []string{"-hex", s})
}

func TestRunQueryUnknownType(t *testing.T) {
	out := &bytes.Buffer{}
	if err := runQuery("example.com", "bogus", 1, true, out); err == nil {
		t.Errorf("unknown query type should fail")
	}
	if err := runQuery("example.com", "257", 1, true, out); err != nil {
		t.Errorf("numeric type should be accepted: %v", err)
	}
}

func TestRunHTTPRequest(t *testing.T) {
	out := &bytes.Buffer{}
	err := runHTTPRequest([]byte("POST /u HTTP/1.1\r\nHost: h\r\nContent-Length: 3\r\n\r\nabc"), out)
	if err != nil {
		t.Fatalf("runHTTPRequest failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "method=POST path=/u version=1.1") {
		t.Errorf("missing request line summary:\n%s", got)
	}
	if !strings.Contains(got, "content-length=3 chunked=false") {
		t.Errorf("missing framing summary:\n%s", got)
	}
}

func TestRunHTTPResponse(t *testing.T) {
	out := &bytes.Buffer{}
	err := runHTTPResponse([]byte("HTTP/1.1 204 No Content\r\n\r\n"), out)
	if err != nil {
		t.Fatalf("runHTTPResponse failed: %v", err)
	}
	if !strings.Contains(out.String(), "status=204") || !strings.Contains(out.String(), "has-body=false") {
		t.Errorf("missing status summary:\n%s", out.String())
	}
}

func TestRunDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err := runDigest([]string{path, filepath.Join(dir, "missing")}, out); err != nil {
		t.Fatalf("runDigest failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ba7816bf8f01cfea") {
		t.Errorf("digest line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], strings.Repeat("-", 64)) {
		t.Errorf("unreadable file should print a placeholder, got %q", lines[1])
	}

	if err := runDigest(nil, out); err == nil {
		t.Errorf("no paths should fail")
	}
}

func TestRunEntropy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text")
	if err := os.WriteFile(path, bytes.Repeat([]byte("aaaa bbbb "), 200), 0o644); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err := runEntropy(path, out); err != nil {
		t.Fatalf("runEntropy failed: %v", err)
	}
	if !strings.Contains(out.String(), "verdict=structured") {
		t.Errorf("expected structured verdict:\n%s", out.String())
	}
}

func TestRunDNSTruncatedInput(t *testing.T) {
	raw := dnswire.BuildQuery("example.com", dnswire.TypeA, 1, true)
	if err := runDNS(raw[:8], &bytes.Buffer{}); err == nil {
		t.Errorf("short input should fail")
	}
}
