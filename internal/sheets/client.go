package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/hourglass/internal/common"
)

// Client is the slice of the Sheets API the writer needs.
type Client interface {
	// EnsureSpreadsheet returns the id of the configured spreadsheet,
	// creating it (with one sheet named sheetName) when id is empty.
	EnsureSpreadsheet(ctx context.Context, id, title, sheetName, timeZone string) (string, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

type googleClient struct {
	service *sheets.Service
}

// NewGoogleClient authenticates against the Sheets API using a service
// account key or an OAuth2 refresh token.
func NewGoogleClient(ctx context.Context, cfg Config) (Client, error) {
	var tokenSource oauth2.TokenSource

	if cfg.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(cfg.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &googleClient{service: srv}, nil
}

func (g *googleClient) EnsureSpreadsheet(ctx context.Context, id, title, sheetName, timeZone string) (string, error) {
	if id != "" {
		ss, err := g.service.Spreadsheets.Get(id).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", id, classify(err))
		}
		for _, sh := range ss.Sheets {
			if sh.Properties != nil && sh.Properties.Title == sheetName {
				return id, nil
			}
		}
		_, err = g.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to add sheet %q: %w", sheetName, classify(err))
		}
		return id, nil
	}

	created, err := g.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title, TimeZone: timeZone},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", classify(err))
	}
	return created.SpreadsheetId, nil
}

func (g *googleClient) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classify(err)
}

func (g *googleClient) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return classify(err)
}

// classify marks API errors for WithRetry: 429 backs off to the max delay,
// other 4xx responses are not retried.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	}
	return err
}
