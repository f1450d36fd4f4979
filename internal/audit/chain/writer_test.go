package chain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChainVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "audit.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	_ = w.Log(KindLogin, "steve", "", map[string]string{"ip": "10.0.0.1"})
	_ = w.Log(KindPermissionChanged, "steve", "alex", map[string]string{"feature": "console", "level": "full"})
	_ = w.Log(KindLogout, "steve", "", nil)
	_ = w.Close()

	bad, err := Verify(path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if bad != -1 {
		t.Fatalf("intact chain flagged at %d", bad)
	}
}

func TestTamperingDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, _ := NewWriter(path)
	_ = w.Log(KindLogin, "steve", "", nil)
	_ = w.Log(KindLogout, "steve", "", nil)
	_ = w.Close()

	b, _ := os.ReadFile(path)
	tampered := strings.Replace(string(b), "steve", "alexa", 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	bad, err := Verify(path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if bad != 0 {
		t.Fatalf("tampered entry not flagged, got %d", bad)
	}
}
