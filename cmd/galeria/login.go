package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"galeria/internal/config"
	"galeria/internal/prefs"
)

func newLoginCmd(cfg *config.Config) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in as the gallery admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			p, err := prefs.Load(cfg.PrefsPath)
			if err != nil {
				return fmt.Errorf("loading preferences: %w", err)
			}
			lockout := prefs.NewLockout(p)

			now := time.Now()
			if wait, blocked := lockout.Blocked(now); blocked {
				return fmt.Errorf("too many failed attempts, try again in %s", wait.Round(time.Second))
			}

			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			session, err := client.SignIn(cmd.Context(), args[0], password)
			if err != nil {
				if lerr := lockout.RegisterFailure(now); lerr != nil {
					fmt.Fprintf(os.Stderr, "warning: recording failed attempt: %v\n", lerr)
				}
				return fmt.Errorf("sign-in failed: %w", err)
			}

			if err := lockout.Reset(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: resetting failed attempts: %v\n", err)
			}
			if err := saveSessionFile(sessionFilePath(cfg), session); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			return writePlain("signed in as %s\n", session.Email)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRemoteClient(cfg)
			if err != nil {
				return err
			}

			if err := client.SignOut(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: remote sign-out failed: %v\n", err)
			}
			if err := removeSessionFile(sessionFilePath(cfg)); err != nil {
				return fmt.Errorf("removing session file: %w", err)
			}
			return writePlain("signed out\n")
		},
	}
}
