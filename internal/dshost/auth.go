// SPDX-License-Identifier: MPL-2.0

package dshost

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/charmbracelet/ssh"
)

const (
	tokenBytes      = 32
	cleanupInterval = 5 * time.Minute
	ctxKeyClient    = "dshost.client"
)

// GenerateToken creates a token for client valid for the configured TTL.
func (s *Server) GenerateToken(client string) (*Token, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.cfg.Clock.Now()
	token := &Token{
		Value:     TokenValue(hex.EncodeToString(raw)),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		Client:    client,
	}

	s.tokenMu.Lock()
	s.tokens[token.Value] = token
	s.tokenMu.Unlock()

	s.logger.Debug("Generated token", "client", client, "expires", token.ExpiresAt)
	return token, nil
}

// ValidateToken returns the token if it exists and has not expired.
// Expired tokens are removed.
func (s *Server) ValidateToken(value TokenValue) (*Token, bool) {
	if value.Validate() != nil {
		return nil, false
	}

	s.tokenMu.RLock()
	token, ok := s.tokens[value]
	s.tokenMu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.cfg.Clock.Now().After(token.ExpiresAt) {
		s.RevokeToken(value)
		return nil, false
	}
	return token, true
}

// RevokeToken invalidates value.
func (s *Server) RevokeToken(value TokenValue) {
	s.tokenMu.Lock()
	delete(s.tokens, value)
	s.tokenMu.Unlock()
}

// RevokeClient invalidates every token issued to client.
func (s *Server) RevokeClient(client string) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	for value, token := range s.tokens {
		if token.Client == client {
			delete(s.tokens, value)
		}
	}
}

// ConnectionInfo issues a token for client and returns where to connect.
func (s *Server) ConnectionInfo(client string) (*ConnectionInfo, error) {
	if !s.IsRunning() {
		return nil, fmt.Errorf("dataset host is not running (state: %s)", s.State())
	}

	token, err := s.GenerateToken(client)
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{
		Host:     s.cfg.Host,
		Port:     s.Port(),
		User:     DefaultUser,
		Token:    token.Value,
		ExpireAt: token.ExpiresAt,
	}, nil
}

func (s *Server) purgeExpiredTokens() {
	now := s.cfg.Clock.Now()
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	for value, token := range s.tokens {
		if now.After(token.ExpiresAt) {
			delete(s.tokens, value)
		}
	}
}

func (s *Server) cleanupExpiredTokens() {
	defer s.DoneGoroutine()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	ctx := s.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeExpiredTokens()
		}
	}
}

func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	token, ok := s.ValidateToken(TokenValue(password))
	if !ok {
		s.logger.Warn("Rejected token", "user", ctx.User(), "remote", ctx.RemoteAddr())
		return false
	}
	ctx.SetValue(ctxKeyClient, token.Client)
	return true
}

// publicKeyHandler refuses keys; only tokens are accepted.
func (s *Server) publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return false
}
