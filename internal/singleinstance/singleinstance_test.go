package singleinstance

import (
	"runtime"
	"testing"
)

func TestAcquireLock_Success(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}

	release, ok, err := AcquireLock()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected lock to be acquired")
	}
	if release == nil {
		t.Fatal("release function should not be nil")
	}

	release()

	// Re-acquiring after release must succeed.
	release2, ok, err := AcquireLock()
	if err != nil {
		t.Fatalf("unexpected error on re-acquire: %v", err)
	}
	if !ok {
		t.Error("expected lock to be re-acquired after release")
	}
	release2()
}
