package capability

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewProducesHexToken(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(c.Raw()) != TokenLen {
		t.Fatalf("expected %d chars, got %d", TokenLen, len(c.Raw()))
	}
	if _, err := hex.DecodeString(c.Raw()); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
}

func TestNewTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if seen[c.Raw()] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[c.Raw()] = true
	}
}

type failingReader struct{ calls int }

func (f *failingReader) Read(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("entropy exhausted")
}

func TestNewFailsWhenRandomnessUnavailable(t *testing.T) {
	orig := reader
	fr := &failingReader{}
	reader = fr
	defer func() { reader = orig }()

	_, err := New()
	if !errors.Is(err, ErrRandomness) {
		t.Fatalf("expected ErrRandomness, got %v", err)
	}
	if fr.calls != 3 {
		t.Fatalf("expected 3 bounded attempts, got %d", fr.calls)
	}
}

func TestStringRedacts(t *testing.T) {
	c := Parse("deadbeef" + strings.Repeat("0", 56))
	s := c.String()
	if strings.Contains(s, c.Raw()) {
		t.Fatalf("String leaked the raw token: %s", s)
	}
	if !strings.HasPrefix(s, "capability(dead") {
		t.Fatalf("unexpected redacted form: %s", s)
	}
}

func TestMarshalJSONRedacts(t *testing.T) {
	c := Parse("deadbeef" + strings.Repeat("0", 56))
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), c.Raw()) {
		t.Fatalf("MarshalJSON leaked the raw token: %s", b)
	}
}
