package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/auth"
	"github.com/tessro/vibe/internal/browser"
)

// loginTimeout bounds the wait for the browser redirect.
const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google authentication",
	Long:  `Commands for managing the Google OAuth sign-in used to read your YouTube account.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long:  `Opens a browser to sign in with Google using the OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Long:  `Removes the stored Google OAuth tokens from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows whether a token is stored and whether it still works.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	oauth, err := oauthConfig()
	if err != nil {
		return err
	}

	pkce, err := auth.NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	callbackServer, err := auth.NewCallbackServer(cfg.YouTube.RedirectPort)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	authURL := oauth.AuthURL(pkce)

	fmt.Println("Opening browser for Google sign-in...")
	if err := browser.Open(authURL); err != nil {
		fmt.Printf("Could not open browser automatically.\n")
		fmt.Printf("Please open this URL in your browser:\n\n%s\n\n", authURL)
	}

	fmt.Println("Waiting for authentication...")
	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	result, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authentication timed out: %w", err)
	}
	if err := result.Validate(pkce.State); err != nil {
		return err
	}

	fmt.Println("Exchanging code for tokens...")
	token, err := oauth.Exchange(ctx, result.Code, pkce.Verifier)
	if err != nil {
		return err
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}
	if err := storage.Save(token.OAuth2()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"status":     "authenticated",
			"expires_at": token.ExpiresAt,
		})
	}
	fmt.Println("Signed in. Token stored at " + storage.Path())
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		if JSONOutput() {
			return printJSON(map[string]string{"status": "not_authenticated"})
		}
		fmt.Println("Not signed in.")
		return nil
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "logged_out"})
	}
	fmt.Println("Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	token, err := storage.Stored()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token == nil {
		if JSONOutput() {
			return printJSON(map[string]any{"authenticated": false})
		}
		fmt.Println("Not signed in.")
		fmt.Println("Run 'vibe auth login' to sign in.")
		return nil
	}

	// A playlists call proves the token (or its refresh) still works.
	ctx := cmd.Context()
	catalog, err := newCatalog(ctx)
	if err == nil {
		_, err = catalog.ListPlaylists(ctx)
	}

	if JSONOutput() {
		out := map[string]any{
			"authenticated": true,
			"valid":         err == nil,
			"expires_at":    token.ExpiresAt,
			"youtube_scope": token.HasScope(auth.YouTubeReadonlyScope),
		}
		if err != nil {
			out["error"] = err.Error()
		}
		return printJSON(out)
	}

	if err != nil {
		fmt.Printf("Token may be expired or invalid: %v\n", err)
		fmt.Println("Run 'vibe auth login' to sign in again.")
		return nil
	}
	fmt.Println("Signed in with Google.")
	if !token.HasScope(auth.YouTubeReadonlyScope) {
		fmt.Println("YouTube read access was not granted; run 'vibe auth login' and allow it.")
	}
	if !token.ExpiresAt.IsZero() {
		fmt.Printf("Access token expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
