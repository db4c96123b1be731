package main

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/Reze/backend/internal/client"
	"github.com/spf13/cobra"
)

type credentialsFlags struct {
	username string
	password string
}

func (f *credentialsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Password (prompted when omitted)")
}

// resolve prompts for whatever was not given on the command line
func (f *credentialsFlags) resolve(a *app) (string, string, error) {
	username, password := f.username, f.password
	var err error
	if username == "" {
		if username, err = a.prompt("Username: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = a.prompt("Password: "); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

func (a *app) signupCmd() *cobra.Command {
	var creds credentialsFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.authenticate(&creds, (*client.Session).Signup)
		},
	}
	creds.register(cmd)
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var creds credentialsFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.authenticate(&creds, (*client.Session).Login)
		},
	}
	creds.register(cmd)
	return cmd
}

func (a *app) authenticate(creds *credentialsFlags, do func(*client.Session, context.Context, string, string) error) error {
	username, password, err := creds.resolve(a)
	if err != nil {
		return err
	}

	s, err := a.session()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := do(s, ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", s.User().Username)
	return nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := s.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}
