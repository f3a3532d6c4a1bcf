// SPDX-License-Identifier: MPL-2.0

// Package sshremote reads datasets from a host speaking the dshost exec
// protocol over SSH.
package sshremote

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/dshost"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultTimeout bounds connection setup.
const DefaultTimeout = 15 * time.Second

// Client implements dataset.Remote for ssh profiles. It opens one
// connection per operation.
type Client struct {
	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath string
	Timeout        time.Duration
	Logger         *log.Logger
}

// ListMembers runs "members <dataset>" and returns one member per line.
func (c *Client) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	out, err := c.run(ctx, p, dshost.CmdMembers, loc.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", loc, err)
	}

	var members []dataset.MemberName
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			members = append(members, dataset.MemberName(line))
		}
	}
	return members, sc.Err()
}

// FetchContent runs "fetch <dataset> <member>".
func (c *Client) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if !member.Safe() {
		return nil, fmt.Errorf("invalid member name %q", member)
	}
	out, err := c.run(ctx, p, dshost.CmdFetch, loc.String(), member.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s(%s): %w", loc, member, err)
	}
	return out, nil
}

func (c *Client) run(ctx context.Context, p profile.Profile, args ...string) ([]byte, error) {
	cfg, err := c.clientConfig(p)
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: c.timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", p.Address(), err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, p.Address(), cfg)
	if err != nil {
		_ = conn.Close() // Handshake failed; nothing else owns the connection
		return nil, fmt.Errorf("ssh handshake with %s: %w", p.Address(), err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer func() { _ = client.Close() }() // Connection is per-operation

	sess, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = sess.Close() }() // May already be closed by Run

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(commandLine(args)) }()

	select {
	case <-ctx.Done():
		_ = client.Close() // Unblocks Run
		<-done
		return nil, ctx.Err()
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if exitErr.ExitStatus() == dshost.ExitNotFound {
				return nil, fmt.Errorf("%s: %w", msg, dataset.ErrNotFound)
			}
			return nil, fmt.Errorf("remote command exited with %d: %s", exitErr.ExitStatus(), msg)
		}
		return nil, fmt.Errorf("remote command: %w", err)
	}
	c.logger().Debug("SSH command finished", "host", p.Host, "command", args[0], "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func (c *Client) clientConfig(p profile.Profile) (*ssh.ClientConfig, error) {
	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // Opt-in per profile
	if !p.InsecureSkipHostKey {
		path, err := c.knownHostsPath()
		if err != nil {
			return nil, err
		}
		hostKey, err = knownhosts.New(path)
		if err != nil {
			return nil, fmt.Errorf("load known hosts %s: %w", path, err)
		}
	}

	user := p.User
	if user == "" {
		user = dshost.DefaultUser
	}
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(p.Password)},
		HostKeyCallback: hostKey,
		Timeout:         c.timeout(),
	}, nil
}

func (c *Client) knownHostsPath() (string, error) {
	if c.KnownHostsPath != "" {
		return c.KnownHostsPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate known_hosts: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}

// commandLine quotes each argument for the host's shell-style splitting.
func commandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = strconv.Quote(a)
	}
	return strings.Join(quoted, " ")
}
