// Package googleapi builds authenticated HTTP clients for the Gmail and
// Calendar APIs.
package googleapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/meetreminder/meetreminder/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

// Scopes needed to read drafts, search the inbox, send mail and read events.
var Scopes = []string{
	gmail.GmailModifyScope,
	calendar.CalendarReadonlyScope,
}

// NewHTTPClient returns an OAuth2 client for the configured owner.
// A service account JSON (with domain-wide delegation) takes precedence over
// client id/secret plus refresh token.
func NewHTTPClient(ctx context.Context, cfg config.GoogleConfig, scopes ...string) (*http.Client, error) {
	if len(scopes) == 0 {
		scopes = Scopes
	}

	if cfg.CredentialsJSON != "" {
		jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), scopes...)
		if err != nil {
			return nil, fmt.Errorf("google: failed to parse credentials: %w", err)
		}
		// Impersonate the calendar and mailbox owner
		jwtConfig.Subject = cfg.OwnerAddress
		return jwtConfig.Client(ctx), nil
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("google: credentials JSON or client id, secret and refresh token are required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
	return oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}), nil
}
