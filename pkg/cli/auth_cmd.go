package cli

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	cmd.AddCommand(newAuthTokenCmd())
	return cmd
}

func newAuthTokenCmd() *cobra.Command {
	var (
		username string
		secret   string
		admin    bool
		expires  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a dev-mode JWT token and save it to the active profile",
		Args:  cobra.NoArgs,
		Long:  "Generate an HS256 JWT token for development and testing. The token is saved to the active profile automatically.",
		Example: `  # Generate a token for admin with the default dev secret
  posgate auth token --username admin --secret dev-secret-change-in-production

  # Generate an admin token with custom expiry
  posgate auth token --username admin --admin --secret mysecret --expires 48h`,
		RunE: func(_ *cobra.Command, _ []string) error {
			now := time.Now()
			claims := jwt.MapClaims{
				"sub": username,
				"iat": now.Unix(),
				"exp": now.Add(expires).Unix(),
			}
			if admin {
				claims["admin"] = true
			}

			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			if _, err := saveTokenToProfile(signed); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(os.Stdout, signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (JWT sub claim)")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (HS256)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Include admin claim in the token")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token expiry duration")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newLoginCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in with a password and save the session token to the active profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				_, _ = fmt.Fprint(os.Stderr, "Username: ")
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return fmt.Errorf("username is required")
			}

			var password string
			if IsStdinTTY() {
				pw, err := promptPassword("Password: ")
				if err != nil {
					return err
				}
				password = pw
			} else {
				// Piped input, e.g. from a secrets manager.
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			var res struct {
				Token string                 `json:"token"`
				User  map[string]interface{} `json:"user"`
			}
			err := client.doJSON(http.MethodPost, "/auth/login", nil, map[string]string{
				"username": username,
				"password": password,
			}, &res)
			if err != nil {
				return err
			}

			profileName, err := saveTokenToProfile(res.Token)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]interface{}{
					"status":  "ok",
					"user":    ExtractField(res.User, "username"),
					"profile": profileName,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Logged in as %q; token saved to profile %q.\n",
				ExtractField(res.User, "username"), profileName)
			return nil
		},
	}
	return cmd
}

// saveTokenToProfile stores a session token on the active profile,
// creating the config file if needed, and returns the profile name.
func saveTokenToProfile(token string) (string, error) {
	cfg, err := LoadUserConfig()
	if err != nil {
		return "", err
	}
	p := cfg.Profiles[cfg.CurrentProfile]
	p.Token = token
	cfg.Profiles[cfg.CurrentProfile] = p
	if err := SaveUserConfig(cfg); err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}
	return cfg.CurrentProfile, nil
}
