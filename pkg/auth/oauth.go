package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	tasksapi "google.golang.org/api/tasks/v1"
)

const (
	// ClientSecretsFile is the downloaded Google API credentials.json
	// (client_id, client_secret, redirect_uris), expected under the
	// quacktask config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile stores the user's OAuth token (access + refresh).
	TokenFile = "token.json"

	// LocalhostAuthPort is where the local web server listens to
	// capture the OAuth redirect.
	LocalhostAuthPort = "6789"

	xdgAppName = "quacktask"
)

// Scopes returns the OAuth scopes the sync engine needs. Full Tasks
// access: the engine lists, creates and deletes tasks.
func Scopes() []string {
	return []string{tasksapi.TasksScope}
}

// GetConfig creates an oauth2.Config from the client secrets file. The
// redirect is forced onto our localhost callback so it always matches
// the listener getTokenFromWeb starts.
func GetConfig(scopes []string) (*oauth2.Config, error) {
	configDir, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(filepath.Join(configDir, ClientSecretsFile))
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	return config, nil
}

// GetClient returns an authenticated *http.Client backed by the stored
// token, refreshing it transparently. It never starts the interactive
// flow; callers that want a browser prompt use Authenticate.
func GetClient(ctx context.Context) (*http.Client, error) {
	config, err := GetConfig(Scopes())
	if err != nil {
		return nil, err
	}

	tokenFile, err := tokenPath()
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no stored token (run with -auth first): %w", err)
	}

	return config.Client(ctx, tok), nil
}

// Authenticate runs the full browser authorization flow and stores the
// resulting token, replacing whatever token existed before.
func Authenticate(ctx context.Context) error {
	config, err := GetConfig(Scopes())
	if err != nil {
		return err
	}

	tok, err := getTokenFromWeb(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to get token from web: %w", err)
	}

	tokenFile, err := tokenPath()
	if err != nil {
		return err
	}
	return saveToken(tokenFile, tok)
}

// RemoveToken deletes the stored token file. Missing file is fine.
func RemoveToken() error {
	tokenFile, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(tokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file %s: %w", tokenFile, err)
	}
	return nil
}

// HasToken reports whether a stored token file exists. It says nothing
// about the token still being valid; the API decides that.
func HasToken() bool {
	tokenFile, err := tokenPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(tokenFile)
	return err == nil
}

// getTokenFromWeb drives the OAuth 2.0 authorization code flow via a
// local web server capturing the redirect.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string)
	errCh := make(chan error)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// AccessTypeOffline so a refresh token comes back.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize QuackTask:\n%s\n", authURL)
	log.Println("Waiting for authorization code...")

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		server.Shutdown(exchangeCtx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		server.Shutdown(context.Background())
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

func tokenPath() (string, error) {
	configDir, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, TokenFile), nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken writes an oauth2.Token to a JSON file readable only by the
// owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// GetXdgHome returns the quacktask config directory.
func GetXdgHome() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}
