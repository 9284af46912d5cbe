package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/venetanji/simplemem-mcp/auth"
	"github.com/venetanji/simplemem-mcp/auth/sessions"
	"github.com/venetanji/simplemem-mcp/clients"
	"github.com/venetanji/simplemem-mcp/internal/config"
	"github.com/venetanji/simplemem-mcp/server"
	"github.com/venetanji/simplemem-mcp/token"
)

const consumedTokenSweepInterval = 10 * time.Minute

func newOAuthServerCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "oauth-server",
		Short: "Run the OAuth authorization server",
		Long: `Runs the OAuth 2.0 authorization server that manages client
credentials and issues the bearer tokens protecting the MCP HTTP transport.

Supported grants: client_credentials, authorization_code (with PKCE) and
refresh_token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOAuthServer(cmd.Context(), fmt.Sprintf("%s:%d", host, port))
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host to bind to")
	cmd.Flags().IntVar(&port, "port", 8080, "Port to bind to")
	return cmd
}

func runOAuthServer(ctx context.Context, addr string) error {
	c := config.New()
	displayAppname(c.GetAppName())

	authService, tokenManager, err := buildAuthorizationService(c)
	if err != nil {
		return err
	}

	srv, err := server.New(c, authService)
	if err != nil {
		return errors.Wrap(err, "runOAuthServer server.New")
	}

	httpServer := &http.Server{Addr: addr, Handler: srv}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepConsumedTokens(ctx, tokenManager)
	go func() {
		log.Info().Str("addr", addr).Str("token_endpoint", "http://"+addr+server.RouteOAuthToken).Msg("OAuth server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("OAuth server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "runOAuthServer Shutdown")
	}
	log.Info().Msg("OAuth server stopped")
	return nil
}

// buildAuthorizationService wires the persistent client registry, signing
// key, token manager and session store into an authorization service.
func buildAuthorizationService(c config.Config) (*auth.AuthorizationService, *token.Manager, error) {
	clientStore, err := clients.OpenFileStore(c.GetOAuthDir())
	if err != nil {
		return nil, nil, errors.Wrap(err, "buildAuthorizationService OpenFileStore")
	}

	key, err := token.GetOrCreateSigningKey(c.GetOAuthDir())
	if err != nil {
		return nil, nil, errors.Wrap(err, "buildAuthorizationService GetOrCreateSigningKey")
	}

	tokenManager := token.New(clientStore, token.NewHMACSigner(key),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
		token.WithLeeway(c.GetTokenLeeway()),
		token.WithIssuer(c.GetBaseURL()),
	)

	sessionStore := sessions.NewStore(
		sessions.AllowlistPolicy(c.GetAllowAnyRedirectURI(), c.GetAllowedRedirectURIs()),
		sessions.WithCodeTimeout(c.GetAuthCodeTimeout()),
	)

	authService, err := auth.NewAuthorizationService(clientStore, tokenManager, sessionStore)
	if err != nil {
		return nil, nil, errors.Wrap(err, "buildAuthorizationService NewAuthorizationService")
	}
	return authService, tokenManager, nil
}

func sweepConsumedTokens(ctx context.Context, tokenManager *token.Manager) {
	ticker := time.NewTicker(consumedTokenSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokenManager.CleanupConsumedTokens()
		}
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
