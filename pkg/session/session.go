// Package session tracks the single signed-in wallet user and mediates every
// wallet operation through that identity.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rescp17/pocketWallet/api"
)

// User is the signed-in account. Balance is a locally cached figure, not
// authoritative; the backend owns the real number.
type User struct {
	Email   string
	Balance float64
}

// Service manages the lifecycle of the single session in a concurrent-safe
// manner. At most one user is signed in at a time; a later login simply
// replaces the session. While nobody is signed in, wallet operations return
// falsy defaults instead of errors, and every backend failure collapses the
// same way. Callers only ever see success or absence.
type Service struct {
	mu      sync.Mutex
	current *User // the *single* active session, nil when anonymous

	client *api.Client
	logger *slog.Logger
}

// New creates a session service on top of the given API client.
func New(client *api.Client) *Service {
	return &Service{client: client, logger: slog.Default()}
}

// NewWithLogger creates a session service that logs swallowed failures to the
// given logger.
func NewWithLogger(client *api.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// CheckAuth reports whether a user is currently signed in.
func (s *Service) CheckAuth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// CurrentUser returns a copy of the signed-in user, or nil when anonymous.
func (s *Service) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// Login authenticates the account and opens a session. It reports success
// only; the cause of a failure is logged, never returned. The cached balance
// starts at 0 and is stale until the first GetBalance call.
func (s *Service) Login(ctx context.Context, email, password string) bool {
	if _, err := s.client.Login(ctx, api.LoginRequest{Email: email, Password: password}); err != nil {
		s.logger.Warn("login failed", "email", email, "error", err)
		return false
	}
	s.setCurrent(&User{Email: email})
	return true
}

// Register creates the account and opens a session for it, with the same
// success-only contract as Login.
func (s *Service) Register(ctx context.Context, email, password string) bool {
	if _, err := s.client.Register(ctx, api.RegisterRequest{Email: email, Password: password}); err != nil {
		s.logger.Warn("registration failed", "email", email, "error", err)
		return false
	}
	s.setCurrent(&User{Email: email})
	return true
}

// Logout clears the client token and the session. It cannot fail and is
// idempotent: calling it while anonymous is a no-op.
func (s *Service) Logout() {
	s.client.ClearToken()
	s.setCurrent(nil)
}

// GetBalance returns the backend balance of the signed-in user, or 0 when
// anonymous or when the fetch fails. A caller cannot tell a zero balance from
// a failed request.
func (s *Service) GetBalance(ctx context.Context) float64 {
	email, ok := s.currentEmail()
	if !ok {
		return 0
	}
	balance, err := s.client.GetBalance(ctx, email)
	if err != nil {
		s.logger.Warn("balance fetch failed", "email", email, "error", err)
		return 0
	}
	return balance
}

// Transfer sends amount from the signed-in user to the receiver. False when
// anonymous or when the backend rejects the transfer for any reason.
func (s *Service) Transfer(ctx context.Context, amount float64, receiverEmail string) bool {
	email, ok := s.currentEmail()
	if !ok {
		return false
	}
	req := api.TransferRequest{
		SenderEmail:   email,
		ReceiverEmail: receiverEmail,
		Amount:        amount,
	}
	if _, err := s.client.Transfer(ctx, req); err != nil {
		s.logger.Warn("transfer failed", "email", email, "error", err)
		return false
	}
	return true
}

// AddMoney simulates a cash-in. The backend exposes no deposit endpoint, so
// only the locally cached balance moves: the current backend figure is read
// and the bumped sum is cached. A later GetBalance re-reads the backend and
// discards the bump.
func (s *Service) AddMoney(ctx context.Context, amount float64) bool {
	if !s.CheckAuth() {
		return false
	}
	balance := s.GetBalance(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil { // logged out while the balance was in flight
		return false
	}
	s.current.Balance = balance + amount
	return true
}

// RequestDebin asks the payer's bank to push amount to the signed-in user.
func (s *Service) RequestDebin(ctx context.Context, amount float64, payerEmail, bankName, cbu string) bool {
	email, ok := s.currentEmail()
	if !ok {
		return false
	}
	req := api.InstantDebitRequest{
		PayerEmail:     payerEmail,
		CollectorEmail: email,
		Amount:         amount,
		BankName:       bankName,
		CBU:            cbu,
	}
	if _, err := s.client.RequestInstantDebit(ctx, req); err != nil {
		s.logger.Warn("instant debit request failed", "email", email, "error", err)
		return false
	}
	return true
}

// GetTransactions returns the signed-in user's history exactly as the
// backend ordered it, or nil when anonymous or on any failure.
func (s *Service) GetTransactions(ctx context.Context) []api.Transaction {
	email, ok := s.currentEmail()
	if !ok {
		return nil
	}
	transactions, err := s.client.GetTransactions(ctx, email)
	if err != nil {
		s.logger.Warn("transactions fetch failed", "email", email, "error", err)
		return nil
	}
	return transactions
}

func (s *Service) setCurrent(user *User) {
	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
}

func (s *Service) currentEmail() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.Email, true
}
