// SPDX-License-Identifier: MPL-2.0

package dshost

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/remote/localfs"
	"github.com/cobdeps/cobdeps/internal/serverbase"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/go-git/go-billy/v5/osfs"
)

// Server is the SSH dataset host. A Server is single-use: once stopped or
// failed, create a new one.
type Server struct {
	*serverbase.Base

	cfg    Config
	store  *localfs.Dir
	logger *log.Logger

	srvMu    sync.Mutex
	srv      *ssh.Server
	listener net.Listener
	addr     string

	tokenMu sync.RWMutex
	tokens  map[TokenValue]*Token
}

// New creates a server for cfg. It does not listen until Start.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	def := DefaultConfig(cfg.Root)
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = def.TokenTTL
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = def.StartupTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "dshost"})
	}

	return &Server{
		Base:   serverbase.NewBase(),
		cfg:    cfg,
		store:  localfs.NewDir(osfs.New(cfg.Root)),
		logger: logger,
		tokens: make(map[TokenValue]*Token),
	}, nil
}

// Start listens and serves in the background. It returns once the server
// accepts connections, or with the reason it could not.
func (s *Server) Start(ctx context.Context) error {
	if err := s.TransitionToStarting(ctx); err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.TransitionToFailed(fmt.Errorf("failed to listen on %s: %w", addr, err))
		return s.LastError()
	}

	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithPasswordAuth(s.passwordHandler),
		wish.WithPublicKeyAuth(s.publicKeyHandler),
		wish.WithMiddleware(s.execMiddleware()),
	)
	if err != nil {
		_ = listener.Close() // Best-effort cleanup on error
		s.TransitionToFailed(fmt.Errorf("failed to create SSH server: %w", err))
		return s.LastError()
	}

	s.srvMu.Lock()
	s.srv = srv
	s.listener = listener
	s.addr = listener.Addr().String()
	s.srvMu.Unlock()

	s.AddGoroutine()
	go s.serve()
	s.AddGoroutine()
	go s.cleanupExpiredTokens()

	select {
	case <-s.StartedChannel():
		s.logger.Info("Dataset host started", "address", s.addr, "root", s.cfg.Root)
		return nil
	case err := <-s.Err():
		s.TransitionToFailed(err)
		return err
	case <-startupCtx.Done():
		s.TransitionToFailed(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
		return s.LastError()
	}
}

// Stop shuts the server down gracefully. Calling it again is a no-op.
func (s *Server) Stop() error {
	if !s.TransitionToStopping() {
		s.WaitForShutdown()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	s.srvMu.Lock()
	if s.srv != nil {
		if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("Shutdown error", "error", err)
			shutdownErr = err
		}
	}
	if s.listener != nil {
		_ = s.listener.Close() // Already closed by Shutdown in the normal case
	}
	s.srvMu.Unlock()

	s.WaitForShutdown()
	s.TransitionToStopped()
	s.CloseErrChannel()
	s.logger.Info("Dataset host stopped")
	return shutdownErr
}

// Wait blocks until the server has stopped and returns the failure, if any.
func (s *Server) Wait() error {
	s.WaitForShutdown()
	if s.State() == serverbase.StateFailed {
		return s.LastError()
	}
	return nil
}

// Address returns the bound host:port, or "" if the server is not running.
func (s *Server) Address() string {
	select {
	case <-s.StartedChannel():
		s.srvMu.Lock()
		defer s.srvMu.Unlock()
		return s.addr
	default:
		return ""
	}
}

// Port returns the bound port, or 0 if the server is not running.
func (s *Server) Port() int {
	_, portStr, err := net.SplitHostPort(s.Address())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// Host returns the configured bind host.
func (s *Server) Host() string { return s.cfg.Host }

// Root returns the directory being served.
func (s *Server) Root() string { return s.cfg.Root }

func (s *Server) serve() {
	defer s.DoneGoroutine()

	s.srvMu.Lock()
	srv, listener := s.srv, s.listener
	s.srvMu.Unlock()

	s.TransitionToRunning()

	if err := srv.Serve(listener); err != nil {
		if errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
			return
		}
		s.SendError(fmt.Errorf("serve error: %w", err))
	}
}

func (s *Server) execMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			_ = sess.Exit(s.handle(sess)) //nolint:errcheck // Client may already be gone
		}
	}
}

// handle runs one exec request and returns its exit status.
func (s *Server) handle(sess ssh.Session) int {
	args := sess.Command()
	client, _ := sess.Context().Value(ctxKeyClient).(string)
	if len(args) == 0 {
		_, _ = fmt.Fprintln(sess.Stderr(), "interactive sessions are not supported")
		return ExitUsage
	}

	s.logger.Debug("Exec request", "client", client, "command", args)

	switch {
	case args[0] == CmdMembers && len(args) == 2:
		members, err := s.store.Members(dataset.Location(args[1]))
		if err != nil {
			return s.fail(sess, err)
		}
		for _, m := range members {
			if _, err := fmt.Fprintln(sess, m); err != nil {
				return ExitFailure
			}
		}
		return ExitOK

	case args[0] == CmdFetch && len(args) == 3:
		data, err := s.store.Content(dataset.Location(args[1]), dataset.MemberName(args[2]))
		if err != nil {
			return s.fail(sess, err)
		}
		if _, err := sess.Write(data); err != nil {
			return ExitFailure
		}
		return ExitOK

	default:
		_, _ = fmt.Fprintf(sess.Stderr(), "usage: %s <dataset> | %s <dataset> <member>\n", CmdMembers, CmdFetch)
		return ExitUsage
	}
}

func (s *Server) fail(sess ssh.Session, err error) int {
	_, _ = fmt.Fprintln(sess.Stderr(), err)
	if errors.Is(err, dataset.ErrNotFound) {
		return ExitNotFound
	}
	if errors.Is(err, dataset.ErrInvalidLocation) {
		return ExitUsage
	}
	s.logger.Warn("Exec request failed", "command", sess.Command(), "error", err)
	return ExitFailure
}
