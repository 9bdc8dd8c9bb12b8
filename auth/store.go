package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

var ErrNotLoggedIn = errors.New("not logged in, run: coffee login")

// TokenResponse is what gets persisted after a login.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// NewTokenResponse copies tok, including the id_token extra.
func NewTokenResponse(tok *oauth2.Token) *TokenResponse {
	r := &TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		r.IDToken = id
	}
	return r
}

// Expired reports whether the access token is past its expiry. Tokens
// without an expiry never expire.
func (t *TokenResponse) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}

// Store keeps the token response in a single file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Save(t *TokenResponse) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	return os.WriteFile(s.path, b, 0600)
}

func (s *Store) Load() (*TokenResponse, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	var t TokenResponse
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("corrupt auth file %s: %w", s.path, err)
	}

	return &t, nil
}

// Remove deletes the stored token. Removing a missing token returns
// ErrNotLoggedIn.
func (s *Store) Remove() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotLoggedIn
	}
	return err
}
