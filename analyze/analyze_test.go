package analyze

import (
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestDigestHexKnownVectors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tt := range tests {
		if got := DigestHex([]byte(tt.input)); got != tt.want {
			t.Errorf("DigestHex(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestDigestFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	if err := os.WriteFile(good, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := DigestFiles([]string{good, filepath.Join(dir, "missing"), good})
	want := []string{
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"",
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEntropy(t *testing.T) {
	if e := Entropy(nil); e != 0 {
		t.Errorf("empty entropy = %v, want 0", e)
	}
	if e := Entropy(bytes.Repeat([]byte{0x41}, 1000)); e != 0 {
		t.Errorf("single-symbol entropy = %v, want 0", e)
	}

	// Two symbols, equal counts: exactly one bit per byte.
	two := append(bytes.Repeat([]byte{0}, 500), bytes.Repeat([]byte{1}, 500)...)
	if e := Entropy(two); math.Abs(e-1.0) > 1e-9 {
		t.Errorf("two-symbol entropy = %v, want 1.0", e)
	}

	// Every byte value once: the 8-bit maximum.
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	if e := Entropy(all); math.Abs(e-8.0) > 1e-9 {
		t.Errorf("uniform entropy = %v, want 8.0", e)
	}
}

func TestClassifyRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 64*1024)
	rng.Read(data)

	c := Classify(data)
	if c.Verdict != VerdictRandom {
		t.Errorf("verdict = %s (entropy %.3f, chi %.1f, mc %.4f), want random",
			c.Verdict, c.Entropy, c.ChiSquare, c.MonteCarloError)
	}
	if c.Entropy < 7.9 {
		t.Errorf("entropy of random data = %.3f", c.Entropy)
	}
}

func TestClassifyCompressed(t *testing.T) {
	// High entropy from 200 equally common symbols, but a distribution a
	// chi-square test rejects instantly.
	data := make([]byte, 20000)
	for i := range data {
		data[i] = byte(i % 200)
	}

	c := Classify(data)
	if c.Verdict != VerdictCompressed {
		t.Errorf("verdict = %s (entropy %.3f, chi %.1f), want compressed",
			c.Verdict, c.Entropy, c.ChiSquare)
	}
}

func TestClassifyStructured(t *testing.T) {
	data := bytes.Repeat([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n"), 100)
	c := Classify(data)
	if c.Verdict != VerdictStructured {
		t.Errorf("verdict = %s (entropy %.3f), want structured", c.Verdict, c.Entropy)
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := Classify(nil)
	if c.Verdict != VerdictStructured {
		t.Errorf("empty verdict = %s, want structured", c.Verdict)
	}
	if c.ChiSquare != 0 {
		t.Errorf("empty chi-square = %v", c.ChiSquare)
	}
	if c.MonteCarloError != math.Pi {
		t.Errorf("empty monte-carlo error = %v, want pi", c.MonteCarloError)
	}
}
