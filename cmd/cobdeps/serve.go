// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cobdeps/cobdeps/internal/dshost"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	root     string
	host     string
	port     int
	tokenTTL time.Duration
	client   string
}

// newServeCommand runs a dataset host serving a local mirror over SSH, for
// ssh profiles and offline testing.
func newServeCommand(app *App) *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory of datasets over SSH",
		Long: `Serve a directory of datasets over SSH.

The directory is laid out as <root>/<dataset>/<member>. Clients authenticate
with a one-time token printed at startup and read members with the ssh
profile type. The host runs until interrupted.`,
		Example: `  cobdeps serve --root ./mirror --port 2222`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.root, "root", ".", "directory holding one folder per dataset")
	f.StringVar(&opts.host, "host", "127.0.0.1", "listen address")
	f.IntVar(&opts.port, "port", 0, "listen port (0 picks a free port)")
	f.DurationVar(&opts.tokenTTL, "token-ttl", time.Hour, "lifetime of issued tokens")
	f.StringVar(&opts.client, "client", "cli", "client name recorded with the issued token")
	return cmd
}

func (a *App) serve(ctx context.Context, opts serveOptions) error {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	cfg := dshost.DefaultConfig(root)
	cfg.Host = opts.host
	cfg.Port = opts.port
	cfg.TokenTTL = opts.tokenTTL
	cfg.Logger = a.newLogger()

	srv, err := dshost.New(cfg)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start dataset host: %w", err)
	}
	defer func() { _ = srv.Stop() }()

	info, err := srv.ConnectionInfo(opts.client)
	if err != nil {
		return err
	}

	snippet, err := profileSnippet(profile.Profile{
		Name:                "local-host",
		Type:                profile.TypeSSH,
		Host:                info.Host,
		Port:                info.Port,
		User:                info.User,
		Password:            string(info.Token),
		InsecureSkipHostKey: true,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.stdout, "%s %s\n", TitleStyle.Render("Serving"), root)
	_, _ = fmt.Fprintf(a.stdout, "%s%s\n", labelStyle.Render("address"), srv.Address())
	_, _ = fmt.Fprintf(a.stdout, "%s%s\n", labelStyle.Render("token expires"), info.ExpireAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(a.stdout, "\n%s\n%s", SubtitleStyle.Render("Profile:"), snippet)

	<-ctx.Done()
	return srv.Stop()
}
