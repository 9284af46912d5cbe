package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/venetanji/simplemem-mcp/clients"
	"github.com/venetanji/simplemem-mcp/internal/config"
	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
	"github.com/venetanji/simplemem-mcp/server"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage OAuth clients and obtain tokens",
	}
	cmd.AddCommand(newClientGenerateCmd())
	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientRevokeCmd())
	cmd.AddCommand(newClientTokenCmd())
	return cmd
}

func openClientStore() (*clients.FileStore, error) {
	c := config.New()
	store, err := clients.OpenFileStore(c.GetOAuthDir())
	if err != nil {
		return nil, errors.Wrap(err, "openClientStore")
	}
	return store, nil
}

func newClientGenerateCmd() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new OAuth client",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openClientStore()
			if err != nil {
				return err
			}
			credentials, err := store.Create(name, description)
			if err != nil {
				return err
			}

			fmt.Println("\n=== OAuth Client Generated ===")
			fmt.Printf("Client ID: %s\n", credentials.ClientID)
			fmt.Printf("Client Secret: %s\n", credentials.ClientSecret)
			fmt.Printf("Name: %s\n", credentials.Name)
			if credentials.Description != "" {
				fmt.Printf("Description: %s\n", credentials.Description)
			}
			fmt.Println("\nIMPORTANT: Save the client secret securely. It will not be shown again.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Client name")
	cmd.Flags().StringVar(&description, "description", "", "Client description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all OAuth clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openClientStore()
			if err != nil {
				return err
			}
			summaries, err := store.List()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No OAuth clients registered.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLIENT ID\tNAME\tCREATED\tSTATUS")
			for _, summary := range summaries {
				status := "Active"
				if summary.Revoked {
					status = "REVOKED"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					summary.ID, summary.Name, summary.CreatedAt.Format(time.RFC3339), status)
			}
			return w.Flush()
		},
	}
}

func newClientRevokeCmd() *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an OAuth client",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openClientStore()
			if err != nil {
				return err
			}
			if err := store.Revoke(clientID); err != nil {
				if errors.Is(err, apperrors.ErrClientNotFound) {
					return errors.Errorf("client not found: %s", clientID)
				}
				return err
			}
			fmt.Printf("Successfully revoked client: %s\n", clientID)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client ID to revoke")
	cmd.MarkFlagRequired("client-id")
	return cmd
}

func newClientTokenCmd() *cobra.Command {
	var (
		serverURL    string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token via the client_credentials grant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientSecret == "" {
				clientSecret = os.Getenv("SIMPLEMEM_CLIENT_SECRET")
			}
			if clientSecret == "" {
				return errors.New("client secret required (--client-secret or SIMPLEMEM_CLIENT_SECRET)")
			}

			cfg := clientcredentials.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenURL:     strings.TrimRight(serverURL, "/") + server.RouteOAuthToken,
				AuthStyle:    oauth2.AuthStyleInParams,
			}
			tok, err := cfg.Token(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "token request failed")
			}

			fmt.Println(tok.AccessToken)
			fmt.Fprintf(os.Stderr, "token_type: %s\nexpires: %s\n", tok.TokenType, tok.Expiry.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "OAuth server base URL")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client secret (prefer SIMPLEMEM_CLIENT_SECRET env var)")
	cmd.MarkFlagRequired("client-id")
	return cmd
}
