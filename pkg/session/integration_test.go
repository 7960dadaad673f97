package session_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescp17/pocketWallet/api"
	"github.com/rescp17/pocketWallet/internal/walletd"
	"github.com/rescp17/pocketWallet/pkg/session"
)

// startBackend runs the in-memory wallet backend and returns its URL.
func startBackend(t *testing.T, openingBalance float64) string {
	t.Helper()
	server := httptest.NewServer(walletd.NewServer(walletd.NewStore(openingBalance)))
	t.Cleanup(server.Close)
	return server.URL
}

func newSession(url string) *session.Service {
	return session.New(api.NewClient(url, api.WithObserver(api.NopObserver{})))
}

func TestFullWalletFlow(t *testing.T) {
	url := startBackend(t, 1000)
	ctx := context.Background()

	alice := newSession(url)
	bob := newSession(url)

	// Two accounts, each with its own client and session.
	require.True(t, alice.Register(ctx, "alice@example.com", "password123"))
	require.True(t, bob.Register(ctx, "bob@example.com", "password123"))

	assert.Equal(t, 1000.0, alice.GetBalance(ctx))
	assert.Equal(t, 1000.0, bob.GetBalance(ctx))

	// Alice pays Bob.
	require.True(t, alice.Transfer(ctx, 250, "bob@example.com"))
	assert.Equal(t, 750.0, alice.GetBalance(ctx))
	assert.Equal(t, 1250.0, bob.GetBalance(ctx))

	aliceHistory := alice.GetTransactions(ctx)
	require.Len(t, aliceHistory, 1)
	assert.Equal(t, api.TransactionOutcome, aliceHistory[0].Type)
	assert.Equal(t, 250.0, aliceHistory[0].Amount)

	bobHistory := bob.GetTransactions(ctx)
	require.Len(t, bobHistory, 1)
	assert.Equal(t, api.TransactionIncome, bobHistory[0].Type)

	// Bob pulls funds from his bank account via DEBIN.
	require.True(t, bob.RequestDebin(ctx, 300, "payer@bank.example", "Banco Galicia", "1234567890123456789012"))
	assert.Equal(t, 1550.0, bob.GetBalance(ctx))
	bobHistory = bob.GetTransactions(ctx)
	require.Len(t, bobHistory, 2)
	assert.Equal(t, "Banco Galicia", bobHistory[1].RelatedBankName)
}

func TestLoginAfterRegisterAcrossProcessRestart(t *testing.T) {
	url := startBackend(t, 500)
	ctx := context.Background()

	first := newSession(url)
	require.True(t, first.Register(ctx, "carol@example.com", "hunter2"))

	// A new client instance with no token simulates a fresh process.
	second := newSession(url)
	assert.False(t, second.Login(ctx, "carol@example.com", "wrong"))
	assert.False(t, second.CheckAuth())

	require.True(t, second.Login(ctx, "carol@example.com", "hunter2"))
	assert.Equal(t, 500.0, second.GetBalance(ctx))
}

func TestDuplicateRegistrationFlow(t *testing.T) {
	url := startBackend(t, 0)
	ctx := context.Background()

	svc := newSession(url)
	require.True(t, svc.Register(ctx, "dave@example.com", "pw"))
	svc.Logout()

	assert.False(t, svc.Register(ctx, "dave@example.com", "pw"), "the backend 400 must surface as a plain false")
	assert.False(t, svc.CheckAuth())
}

func TestLogoutCutsAccessAgainstRealBackend(t *testing.T) {
	url := startBackend(t, 100)
	ctx := context.Background()

	svc := newSession(url)
	require.True(t, svc.Register(ctx, "erin@example.com", "pw"))
	require.Equal(t, 100.0, svc.GetBalance(ctx))

	svc.Logout()
	assert.Zero(t, svc.GetBalance(ctx))
	assert.Empty(t, svc.GetTransactions(ctx))

	// Same service, new login: works again.
	require.True(t, svc.Login(ctx, "erin@example.com", "pw"))
	assert.Equal(t, 100.0, svc.GetBalance(ctx))
}

func TestAddMoneyDivergesFromBackend(t *testing.T) {
	url := startBackend(t, 1000)
	ctx := context.Background()

	svc := newSession(url)
	require.True(t, svc.Register(ctx, "frank@example.com", "pw"))

	require.True(t, svc.AddMoney(ctx, 500))
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, 1500.0, svc.CurrentUser().Balance)
	assert.Equal(t, 1000.0, svc.GetBalance(ctx), "the backend never saw the cash-in")
}
