// Package credstore persists the session credential across process restarts.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// Store is a durable key-value surface holding exactly one entry: the
// bearer token. Every method is synchronous and local.
type Store interface {
	// Get returns the stored token, or "" if none is stored.
	Get() (string, error)

	// Set stores token, overwriting any previous value.
	Set(token string) error

	// Remove deletes the stored token. Removing a missing token is not an error.
	Remove() error
}

// File stores the token as an oauth2.Token JSON document at Path.
type File struct {
	Path string
}

// NewFile returns a File store writing to path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Get implements Store.
func (f *File) Get() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(f.Path), err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("invalid %s: %w", filepath.Base(f.Path), err)
	}
	return token.AccessToken, nil
}

// Set implements Store. The file is written with mode 0600 and its
// directory is created with mode 0700 if missing.
func (f *File) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Remove implements Store.
func (f *File) Remove() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Memory is an in-process Store for tests.
type Memory struct {
	token string

	// Error injection for testing
	GetErr    error
	SetErr    error
	RemoveErr error
}

// NewMemory returns a Memory store holding token.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Get implements Store.
func (m *Memory) Get() (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.token, nil
}

// Set implements Store.
func (m *Memory) Set(token string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.token = token
	return nil
}

// Remove implements Store.
func (m *Memory) Remove() error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.token = ""
	return nil
}
