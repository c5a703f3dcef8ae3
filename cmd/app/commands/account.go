package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/allisson/phrsdk"
)

// AccountClient is the part of the SDK client the account commands use.
type AccountClient interface {
	Register(ctx context.Context) (*phrsdk.Account, error)
	Login(ctx context.Context, userID, clientSecret string) error
	Logout(ctx context.Context) error
}

type accountView struct {
	UserID       string `json:"user_id" yaml:"user_id"`
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
}

// RunRegister creates a new account, stores its keys in the local key store and logs in.
// The client secret is printed once and cannot be recovered.
func RunRegister(ctx context.Context, client AccountClient, logger *slog.Logger, w io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("registering new account")

	account, err := client.Register(ctx)
	if err != nil {
		return fmt.Errorf("failed to register account: %w", err)
	}

	view := accountView{UserID: account.UserID, ClientID: account.ClientID, ClientSecret: account.ClientSecret}
	if err := writeResult(w, format, view, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "Account registered successfully!")
		_, _ = fmt.Fprintf(w, "User ID:       %s\n", view.UserID)
		_, _ = fmt.Fprintf(w, "Client ID:     %s\n", view.ClientID)
		_, _ = fmt.Fprintf(w, "Client Secret: %s\n", view.ClientSecret)
		_, _ = fmt.Fprintln(w, "\nWARNING: Save the client secret securely. It will not be shown again.")
	}); err != nil {
		return err
	}

	logger.Info("account registered", slog.String("user_id", account.UserID))
	return nil
}

// RunLogin logs in with the credentials printed by register. An empty secret is read
// from the terminal without echo, or from the first input line when not a terminal.
func RunLogin(
	ctx context.Context,
	client AccountClient,
	logger *slog.Logger,
	userID string,
	clientSecret string,
	format string,
	in IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if userID == "" {
		return errors.New("user id is required")
	}

	if clientSecret == "" {
		var err error
		clientSecret, err = promptForSecret(in)
		if err != nil {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
	}
	if clientSecret == "" {
		return errors.New("client secret cannot be empty")
	}

	if err := client.Login(ctx, userID, clientSecret); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	view := accountView{UserID: userID}
	if err := writeResult(in.Writer, format, view, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Logged in as %s\n", userID)
	}); err != nil {
		return err
	}

	logger.Info("logged in", slog.String("user_id", userID))
	return nil
}

// promptForSecret reads the client secret. Terminal input is not echoed.
func promptForSecret(in IOTuple) (string, error) {
	_, _ = fmt.Fprint(in.Writer, "Client secret: ")

	if f, ok := in.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		secret, err := term.ReadPassword(int(f.Fd())) //nolint:gosec // fd fits in int
		_, _ = fmt.Fprintln(in.Writer)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in.Reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// RunLogout drops the session and every key of the local key store.
func RunLogout(ctx context.Context, client AccountClient, logger *slog.Logger, w io.Writer) error {
	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	_, _ = fmt.Fprintln(w, "Logged out. Local keys were removed.")
	logger.Info("logged out")
	return nil
}
