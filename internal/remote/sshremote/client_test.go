// SPDX-License-Identifier: MPL-2.0

package sshremote

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/dshost"
	"github.com/cobdeps/cobdeps/internal/profile"
	"github.com/cobdeps/cobdeps/internal/testutil"

	"github.com/charmbracelet/log"
)

func startHost(t *testing.T) (*dshost.Server, profile.Profile) {
	t.Helper()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "HLQ.COPYLIB", "CUSTREC"), []byte("       01 CUST-REC.\n"))
	testutil.MustWriteFile(t, filepath.Join(root, "HLQ.COPYLIB", "ACCTREC"), []byte("       01 ACCT-REC.\n"))

	cfg := dshost.DefaultConfig(root)
	cfg.Logger = log.New(io.Discard)
	srv, err := dshost.New(cfg)
	if err != nil {
		t.Fatalf("dshost.New() error = %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	testutil.MustStop(t, srv)

	info, err := srv.ConnectionInfo("test")
	if err != nil {
		t.Fatalf("ConnectionInfo() error = %v", err)
	}
	return srv, profile.Profile{
		Name:                "host",
		Type:                profile.TypeSSH,
		Host:                info.Host,
		Port:                info.Port,
		User:                info.User,
		Password:            info.Token.String(),
		InsecureSkipHostKey: true,
	}
}

func TestClient_AgainstDatasetHost(t *testing.T) {
	t.Parallel()

	_, p := startHost(t)
	client := &Client{}
	ctx := context.Background()

	members, err := client.ListMembers(ctx, "HLQ.COPYLIB", p)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if want := []dataset.MemberName{"ACCTREC", "CUSTREC"}; !slices.Equal(members, want) {
		t.Errorf("ListMembers() = %v, want %v", members, want)
	}

	data, err := client.FetchContent(ctx, "HLQ.COPYLIB", "CUSTREC", p)
	if err != nil || string(data) != "       01 CUST-REC.\n" {
		t.Errorf("FetchContent() = %q, %v", data, err)
	}

	if _, err := client.FetchContent(ctx, "HLQ.COPYLIB", "NOPE", p); !errors.Is(err, dataset.ErrNotFound) {
		t.Errorf("missing member error = %v, want ErrNotFound", err)
	}
	if _, err := client.ListMembers(ctx, "HLQ.NOPE", p); !errors.Is(err, dataset.ErrNotFound) {
		t.Errorf("missing dataset error = %v, want ErrNotFound", err)
	}
}

func TestClient_BadToken(t *testing.T) {
	t.Parallel()

	_, p := startHost(t)
	p.Password = "not-a-token"

	if _, err := (&Client{}).ListMembers(context.Background(), "HLQ.COPYLIB", p); err == nil {
		t.Error("expected authentication failure")
	}
}

func TestClient_UnknownHostKey(t *testing.T) {
	t.Parallel()

	_, p := startHost(t)
	p.InsecureSkipHostKey = false
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	testutil.MustWriteFile(t, knownHosts, nil)

	_, err := (&Client{KnownHostsPath: knownHosts}).ListMembers(context.Background(), "HLQ.COPYLIB", p)
	if err == nil {
		t.Error("expected host key verification failure")
	}
}

func TestClient_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	p := profile.Profile{Name: "h", Type: profile.TypeSSH, Host: "127.0.0.1", Port: 1, InsecureSkipHostKey: true}
	if _, err := (&Client{}).ListMembers(context.Background(), "..", p); !errors.Is(err, dataset.ErrInvalidLocation) {
		t.Errorf("error = %v, want ErrInvalidLocation", err)
	}
	if _, err := (&Client{}).FetchContent(context.Background(), "HLQ.A", "x/y", p); err == nil {
		t.Error("expected error for unsafe member")
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	if got, want := commandLine([]string{"fetch", "HLQ.A", "MEM#1"}), `"fetch" "HLQ.A" "MEM#1"`; got != want {
		t.Errorf("commandLine() = %s, want %s", got, want)
	}
}
