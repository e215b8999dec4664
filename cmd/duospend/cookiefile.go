// ABOUTME: Session-cookie persistence for the CLI between invocations
// ABOUTME: Stores exported cookies as a 0600 JSON file

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// saveCookies writes the session cookies to path, creating parent
// directories as needed. The file is 0600: it holds bearer tokens.
func saveCookies(path string, cs []*http.Cookie) error {
	stored := make([]storedCookie, 0, len(cs))
	for _, c := range cs {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// loadCookies reads previously saved session cookies.
func loadCookies(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	cs := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cs = append(cs, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return cs, nil
}

// clearCookies removes the cookie file; a missing file is fine.
func clearCookies(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
