package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/rescp17/pocketWallet/api"
	"github.com/rescp17/pocketWallet/internal/util"
	"github.com/rescp17/pocketWallet/pkg/session"
)

func main() {
	f, _ := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close log file", "error", err)
		}
	}()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cmd := &cobra.Command{
		Use:   "pocketWallet",
		Short: "A command line client for the pocket wallet backend",
	}

	cmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the wallet backend")
	cmd.PersistentFlags().String("email", "", "Account email")
	cmd.PersistentFlags().String("password", "", "Account password (prompted when omitted)")
	for _, key := range []string{"server", "email", "password"} {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(key)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind flag %s: %v\n", key, err)
			os.Exit(1)
		}
	}
	viper.SetEnvPrefix("POCKETWALLET")
	viper.AutomaticEnv()
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetConfigName(".pocketwallet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		// A missing config file is fine; flags and env cover everything.
		_ = viper.ReadInConfig()
	}

	cmd.AddCommand(registerCmd())
	cmd.AddCommand(loginCmd())
	cmd.AddCommand(balanceCmd())
	cmd.AddCommand(transferCmd())
	cmd.AddCommand(depositCmd())
	cmd.AddCommand(debinCmd())
	cmd.AddCommand(transactionsCmd())

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a wallet account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email := viper.GetString("email")
			if email == "" {
				return fmt.Errorf("no account email configured (--email or POCKETWALLET_EMAIL)")
			}
			password, err := resolvePassword()
			if err != nil {
				return err
			}
			svc := newService()
			if !svc.Register(cmd.Context(), email, password) {
				return fmt.Errorf("registration failed for %s (the email may already be taken)", email)
			}
			fmt.Printf("Account created for %s\n", email)
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			email, err := signIn(cmd.Context(), svc)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", email)
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			if _, err := signIn(cmd.Context(), svc); err != nil {
				return err
			}
			fmt.Println(util.FormatAmount(svc.GetBalance(cmd.Context())))
			return nil
		},
	}
}

func transferCmd() *cobra.Command {
	var receiver string
	var amount float64
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send money to another wallet account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("amount must be positive")
			}
			svc := newService()
			if _, err := signIn(cmd.Context(), svc); err != nil {
				return err
			}
			if !svc.Transfer(cmd.Context(), amount, receiver) {
				return fmt.Errorf("transfer of %s to %s failed", util.FormatAmount(amount), receiver)
			}
			fmt.Printf("Sent %s to %s\n", util.FormatAmount(amount), receiver)
			return nil
		},
	}
	cmd.Flags().StringVar(&receiver, "to", "", "Receiver account email")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to send")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func depositCmd() *cobra.Command {
	var amount float64
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Simulate a cash-in (local only, the backend balance is untouched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("amount must be positive")
			}
			svc := newService()
			if _, err := signIn(cmd.Context(), svc); err != nil {
				return err
			}
			if !svc.AddMoney(cmd.Context(), amount) {
				return fmt.Errorf("deposit failed")
			}
			user := svc.CurrentUser()
			fmt.Printf("Simulated balance: %s\n", util.FormatAmount(user.Balance))
			fmt.Println("Note: the backend has no cash-in endpoint; this deposit exists only in this process.")
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to add")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func debinCmd() *cobra.Command {
	var payer, bank, cbu string
	var amount float64
	cmd := &cobra.Command{
		Use:   "debin",
		Short: "Request an instant debit from a bank account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("amount must be positive")
			}
			if err := validateCBU(cbu); err != nil {
				return err
			}
			svc := newService()
			if _, err := signIn(cmd.Context(), svc); err != nil {
				return err
			}
			if !svc.RequestDebin(cmd.Context(), amount, payer, bank, cbu) {
				return fmt.Errorf("instant debit request failed")
			}
			fmt.Printf("Requested %s from %s via %s\n", util.FormatAmount(amount), payer, bank)
			return nil
		},
	}
	cmd.Flags().StringVar(&payer, "payer", "", "Payer email")
	cmd.Flags().StringVar(&bank, "bank", "", "Payer bank name")
	cmd.Flags().StringVar(&cbu, "cbu", "", "Payer bank account identifier (22 digits)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to request")
	_ = cmd.MarkFlagRequired("payer")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("cbu")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func transactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List the wallet's transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			if _, err := signIn(cmd.Context(), svc); err != nil {
				return err
			}
			history := svc.GetTransactions(cmd.Context())
			if len(history) == 0 {
				fmt.Println("No transactions yet.")
				return nil
			}
			fmt.Println(util.PadRight("TYPE", 9) + util.PadRight("AMOUNT", 13) + util.PadRight("DATE", 18) + "DETAIL")
			for _, tx := range history {
				detail := tx.RelatedWalletID
				if tx.RelatedBankName != "" {
					detail = tx.RelatedBankName
				}
				fmt.Println(util.PadRight(tx.Type, 9) +
					util.PadRight(util.FormatAmount(tx.Amount), 13) +
					util.PadRight(util.FormatTimestamp(tx.CreatedAt), 18) +
					detail)
			}
			return nil
		},
	}
}

func newService() *session.Service {
	client := api.NewClient(viper.GetString("server"))
	return session.New(client)
}

// signIn opens a session with the configured credentials. Every wallet
// command starts anonymous and logs in fresh; nothing is persisted between
// invocations.
func signIn(ctx context.Context, svc *session.Service) (string, error) {
	email := viper.GetString("email")
	if email == "" {
		return "", fmt.Errorf("no account email configured (--email or POCKETWALLET_EMAIL)")
	}
	password, err := resolvePassword()
	if err != nil {
		return "", err
	}
	if !svc.Login(ctx, email, password) {
		return "", fmt.Errorf("login failed for %s", email)
	}
	return email, nil
}

func resolvePassword() (string, error) {
	if password := viper.GetString("password"); password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := readPassword(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}

// readPassword reads without echo on a terminal, and falls back to a plain
// line read when stdin is piped.
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytePassword)), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// validateCBU rejects malformed bank account identifiers before any network
// call. A CBU is a fixed 22-digit numeric string.
func validateCBU(cbu string) error {
	if len(cbu) != 22 {
		return fmt.Errorf("cbu must be exactly 22 digits, got %d characters", len(cbu))
	}
	for _, r := range cbu {
		if r < '0' || r > '9' {
			return fmt.Errorf("cbu must contain only digits")
		}
	}
	return nil
}
