package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the provider keys stored with your account",
	}
	cmd.AddCommand(a.settingsShowCmd(), a.settingsSetCmd())
	return cmd
}

func (a *app) settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings with keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.signedIn()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			creds, err := s.RefreshSettings(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Google API key:     %s\n", mask(creds.GoogleAPIKey))
			fmt.Fprintf(a.out, "Search engine ID:   %s\n", creds.CseID)
			fmt.Fprintf(a.out, "OpenRouter API key: %s\n", mask(creds.OpenRouterAPIKey))
			fmt.Fprintf(a.out, "OpenRouter model:   %s\n", creds.OpenRouterModel)
			return nil
		},
	}
}

func (a *app) settingsSetCmd() *cobra.Command {
	var google, cse, openRouter, model string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the stored settings; omitted flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.signedIn()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			creds, err := s.RefreshSettings(ctx)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("google-api-key") {
				creds.GoogleAPIKey = google
			}
			if flags.Changed("cse-id") {
				creds.CseID = cse
			}
			if flags.Changed("openrouter-api-key") {
				creds.OpenRouterAPIKey = openRouter
			}
			if flags.Changed("openrouter-model") {
				creds.OpenRouterModel = model
			}

			if err := s.UpdateSettings(ctx, creds); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Settings saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&google, "google-api-key", "", "Google Custom Search API key")
	cmd.Flags().StringVar(&cse, "cse-id", "", "Google Custom Search engine ID")
	cmd.Flags().StringVar(&openRouter, "openrouter-api-key", "", "OpenRouter API key")
	cmd.Flags().StringVar(&model, "openrouter-model", "", "OpenRouter model name")
	return cmd
}

// mask keeps the last four characters of a key
func mask(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 4:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}
