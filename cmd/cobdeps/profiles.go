// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cobdeps/cobdeps/internal/issue"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/spf13/cobra"
)

// newProfilesCommand creates the `cobdeps profiles` command tree.
func newProfilesCommand(app *App) *cobra.Command {
	profCmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage connection profiles",
		Long: `Manage connection profiles.

Profiles are stored as TOML in profiles.toml next to config.cue, or in the
file named by profiles_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	profCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List connection profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.listProfiles(cmd.Context())
		},
	})

	profCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the profiles file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.resolveProfilesPath(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, path)
			return err
		},
	})

	profCmd.AddCommand(newProfilesAddCommand(app))
	profCmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.removeProfile(cmd.Context(), profile.Name(args[0]))
		},
	})

	return profCmd
}

func newProfilesAddCommand(app *App) *cobra.Command {
	var p profile.Profile
	var typ string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a connection profile",
		Example: `  cobdeps profiles add dev --type zosmf --host mvs.example.com --port 443 --user ibmuser --secure --default
  cobdeps profiles add mirror --type local --base-path /srv/mirror
  cobdeps profiles add lake --type s3 --host s3.example.com --port 9000 --bucket copylibs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = profile.Name(args[0])
			p.Type = profile.Type(typ)
			return app.addProfile(cmd.Context(), p)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", string(profile.TypeZOSMF), "transport: zosmf, ssh, local or s3")
	f.StringVar(&p.Host, "host", "", "host name")
	f.IntVar(&p.Port, "port", 0, "port")
	f.StringVarP(&p.User, "user", "u", "", "user name, access key or token user")
	f.StringVar(&p.Password, "password", "", "password, secret key or token")
	f.StringVar(&p.BasePath, "base-path", "", "mirror directory for local profiles")
	f.StringVar(&p.Bucket, "bucket", "", "bucket for s3 profiles")
	f.BoolVar(&p.Secure, "secure", false, "use TLS")
	f.BoolVar(&p.InsecureSkipHostKey, "insecure-skip-host-key", false, "do not verify the SSH host key")
	f.BoolVar(&p.Default, "default", false, "pre-select this profile in the prompt")
	return cmd
}

// resolveProfilesPath loads configuration and returns the profiles file.
func (a *App) resolveProfilesPath(ctx context.Context) (string, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return "", err
	}
	return a.profilesPath(cfg)
}

func (a *App) readProfiles(ctx context.Context) (string, []profile.Profile, error) {
	path, err := a.resolveProfilesPath(ctx)
	if err != nil {
		return "", nil, err
	}
	profiles, err := profile.NewFileProvider(path).Profiles(ctx)
	if err != nil {
		return "", nil, issue.NewErrorContext().
			WithOperation("load connection profiles").
			WithResource(path).
			WithIssue(issue.ProfilesInvalidId).
			WithSuggestion("Fix or remove the offending [[profile]] table").
			Wrap(err).
			BuildError()
	}
	return path, profiles, nil
}

func (a *App) listProfiles(ctx context.Context) error {
	path, profiles, err := a.readProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(a.stdout, SubtitleStyle.Render("No profiles in "+path))
		return err
	}
	for _, p := range profiles {
		marker := " "
		if p.Default {
			marker = SuccessStyle.Render("*")
		}
		endpoint := p.Description()
		switch p.Type {
		case profile.TypeLocal:
			endpoint = p.BasePath
		case profile.TypeS3:
			endpoint = p.Address() + "/" + p.Bucket
		}
		_, _ = fmt.Fprintf(a.stdout, "%s %s %s %s\n", marker, CmdStyle.Render(string(p.Name)), SubtitleStyle.Render(string(p.Type)), endpoint)
	}
	return nil
}

func (a *App) addProfile(ctx context.Context, p profile.Profile) error {
	if p.Port == 0 {
		p.Port = defaultPort(p)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	path, profiles, err := a.readProfiles(ctx)
	if err != nil {
		return err
	}
	for i, existing := range profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: %q", profile.ErrDuplicateName, p.Name)
		}
		if p.Default {
			profiles[i].Default = false
		}
	}
	if err := writeProfiles(path, append(profiles, p)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Added profile %s to %s\n", CmdStyle.Render(string(p.Name)), path)
	return err
}

func (a *App) removeProfile(ctx context.Context, name profile.Name) error {
	path, profiles, err := a.readProfiles(ctx)
	if err != nil {
		return err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		return fmt.Errorf("%w: %q", profile.ErrProfileNotFound, name)
	}
	if err := writeProfiles(path, kept); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Removed profile %s\n", CmdStyle.Render(string(name)))
	return err
}

// writeProfiles replaces the profiles file. It holds credentials, so it is
// written owner-only.
func writeProfiles(path string, profiles []profile.Profile) error {
	data, err := profile.Encode(profiles)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

// defaultPort returns the conventional port for a profile's transport.
func defaultPort(p profile.Profile) int {
	switch p.Type {
	case profile.TypeZOSMF:
		if p.Secure {
			return 443
		}
		return 80
	case profile.TypeSSH:
		return 22
	case profile.TypeS3:
		if p.Secure {
			return 443
		}
		return 9000
	default:
		return 0
	}
}

// profileSnippet renders p as a profiles.toml table.
func profileSnippet(p profile.Profile) (string, error) {
	data, err := profile.Encode([]profile.Profile{p})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
