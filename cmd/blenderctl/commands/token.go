package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/internal/config"
	"github.com/flightblender/coordination-engine/pkg/api/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint access tokens for the operator API",
	Long: `Token commands operate directly against the coordination engine's
configuration file, the same way the reference server's local admin
commands (user, group) manage local state without going through the REST
API. There is no login flow: blenderctl never exchanges credentials with a
running server, it signs a JWT locally with the server's own secret.`,
}

var (
	tokenConfigPath string
	tokenSubject    string
	tokenUSS        string
	tokenScopes     []string
	tokenTTL        time.Duration
)

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Mint a bearer access token",
	Long: `Issue signs a JWT access token using the jwt_secret configured for the
target coordination engine, so it can be minted offline and handed to
blenderctl (or any other operator API caller) via --token/BLENDER_TOKEN.`,
	RunE: runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenConfigPath, "config", "", "Path to the coordination engine's config file")
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "Subject (operator identity) the token is issued for")
	tokenIssueCmd.Flags().StringVar(&tokenUSS, "uss", "", "Originating USS identifier")
	tokenIssueCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{string(auth.ScopeSubmitDeclaration), string(auth.ScopeStrategicCoordination)}, "Scopes to grant")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenIssueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(tokenConfigPath)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("configuration has no server.jwt_secret set; cannot sign tokens")
	}

	scopes := make([]auth.Scope, len(tokenScopes))
	for i, s := range tokenScopes {
		scopes[i] = auth.Scope(s)
	}

	svc := auth.NewJWTService([]byte(cfg.Server.JWTSecret), "flight-blender", cfg.DSS.Audience, tokenTTL)
	token, err := svc.IssueAccessToken(tokenSubject, tokenUSS, scopes)
	if err != nil {
		return fmt.Errorf("issuing access token: %w", err)
	}

	fmt.Println(token)
	return nil
}
