package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/venetanji/simplemem-mcp/clients"
	"github.com/venetanji/simplemem-mcp/internal/config"
	"github.com/venetanji/simplemem-mcp/mcpserver"
	"github.com/venetanji/simplemem-mcp/memoryapi"
	"github.com/venetanji/simplemem-mcp/token"
)

var (
	apiEndpoint   string
	transport     string
	listenAddr    string
	oauthRequired bool
)

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "Memory API endpoint URL (default: SIMPLEMEM_API_ENDPOINT / SIMPLEMEM_API_URL env var, or http://localhost:8000)")
	cmd.Flags().StringVar(&transport, "transport", mcpserver.TransportStdio, "Transport to use for serving MCP (stdio, streamable-http)")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", ":8899", "Listen address for the streamable-http transport (path is fixed to /mcp)")
	cmd.Flags().BoolVar(&oauthRequired, "oauth-required", false, "Require OAuth bearer tokens on the streamable-http transport")
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	addServeFlags(cmd)
	return cmd
}

func runServe(ctx context.Context) error {
	c := config.New()
	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = c.GetAPIEndpoint()
	}

	var options []mcpserver.Option
	if transport == mcpserver.TransportStreamableHTTP {
		logActiveClients(c)
		if oauthRequired {
			validator, err := newTokenValidator(c)
			if err != nil {
				return err
			}
			options = append(options, mcpserver.WithTokenValidator(validator))
			log.Info().Msg("OAuth authentication: REQUIRED")
		} else {
			log.Info().Msg("OAuth authentication: optional (use --oauth-required to enforce)")
		}
	}

	mcpServer, err := mcpserver.New(memoryapi.NewClient(endpoint), transport, options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if transport != mcpserver.TransportStdio {
		log.Info().Str("api_endpoint", endpoint).Str("transport", transport).Str("listen_addr", listenAddr).Msg("starting MCP server")
	}
	return mcpServer.Start(ctx, listenAddr)
}

// newTokenValidator builds a token manager against the local OAuth state so
// the MCP transport can verify tokens minted by the authorization server.
func newTokenValidator(c config.Config) (mcpserver.TokenValidator, error) {
	clientStore, err := clients.OpenFileStore(c.GetOAuthDir())
	if err != nil {
		return nil, errors.Wrap(err, "newTokenValidator OpenFileStore")
	}
	key, err := token.GetOrCreateSigningKey(c.GetOAuthDir())
	if err != nil {
		return nil, errors.Wrap(err, "newTokenValidator GetOrCreateSigningKey")
	}
	return token.New(clientStore, token.NewHMACSigner(key),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
		token.WithLeeway(c.GetTokenLeeway()),
	), nil
}

func logActiveClients(c config.Config) {
	clientStore, err := clients.OpenFileStore(c.GetOAuthDir())
	if err != nil {
		log.Warn().Err(err).Msg("could not open OAuth client registry")
		return
	}
	summaries, err := clientStore.List()
	if err != nil {
		log.Warn().Err(err).Msg("could not list OAuth clients")
		return
	}
	active := 0
	for _, summary := range summaries {
		if summary.Revoked {
			continue
		}
		active++
		log.Info().Str("name", summary.Name).Str("client_id", summary.ID).Msg("active OAuth client")
	}
	if active == 0 {
		log.Info().Msg("no active OAuth clients registered")
	}
}
