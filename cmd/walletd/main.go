package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/rescp17/pocketWallet/internal/walletd"
)

func main() {
	var addr string
	var openingBalance float64

	cmd := &cobra.Command{
		Use:   "walletd",
		Short: "An in-memory wallet backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := walletd.NewStore(openingBalance)
			server := walletd.NewServer(store)
			slog.Info("wallet backend listening", "addr", addr, "openingBalance", openingBalance)
			if err := http.ListenAndServe(addr, server); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().Float64Var(&openingBalance, "opening-balance", 1000, "Balance granted to newly registered accounts")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}
