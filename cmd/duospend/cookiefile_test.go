// ABOUTME: Tests for CLI session-cookie persistence
// ABOUTME: Verifies round-trip, file permissions, and idempotent clearing

package main

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestCookieFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	in := []*http.Cookie{
		{Name: "access_token", Value: "acc"},
		{Name: "refresh_token", Value: "ref"},
	}
	if err := saveCookies(path, in); err != nil {
		t.Fatalf("saveCookies failed: %v", err)
	}

	out, err := loadCookies(path)
	if err != nil {
		t.Fatalf("loadCookies failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d cookies, want 2", len(out))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Value != in[i].Value {
			t.Errorf("cookie %d = %s=%s, want %s=%s", i, out[i].Name, out[i].Value, in[i].Name, in[i].Value)
		}
	}
}

func TestCookieFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	if err := saveCookies(path, []*http.Cookie{{Name: "access_token", Value: "acc"}}); err != nil {
		t.Fatalf("saveCookies failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600; file holds bearer tokens", perm)
	}
}

func TestClearCookies_MissingFileIsFine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	if err := clearCookies(path); err != nil {
		t.Errorf("clearCookies on missing file: %v", err)
	}

	if err := saveCookies(path, nil); err != nil {
		t.Fatalf("saveCookies failed: %v", err)
	}
	if err := clearCookies(path); err != nil {
		t.Errorf("clearCookies failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cookie file still present after clear")
	}
}
