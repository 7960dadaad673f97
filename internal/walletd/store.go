// Package walletd is an in-memory wallet backend implementing the REST
// surface the client speaks. It backs the local dev server and the
// integration tests; nothing survives a restart.
package walletd

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rescp17/pocketWallet/api"
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrBadCredentials    = errors.New("unknown email or wrong password")
	ErrUnknownAccount    = errors.New("no account for that email")
	ErrUnknownWallet     = errors.New("no wallet with that id")
	ErrUnknownToken      = errors.New("token not recognized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// account is one registered wallet holder.
type account struct {
	email        string
	passwordHash []byte
	walletID     string
	balance      float64
	transactions []api.Transaction // append-ordered, oldest first
}

// Store keeps every account, balance, and transaction in memory.
type Store struct {
	mu             sync.Mutex
	accounts       map[string]*account // keyed by email
	tokens         map[string]string   // bearer token -> email
	openingBalance float64
	now            func() time.Time
}

// NewStore creates an empty store. Accounts registered later start with the
// given opening balance.
func NewStore(openingBalance float64) *Store {
	return &Store{
		accounts:       make(map[string]*account),
		tokens:         make(map[string]string),
		openingBalance: openingBalance,
		now:            time.Now,
	}
}

// Register creates an account and returns a fresh bearer token for it.
func (s *Store) Register(email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return "", ErrDuplicateEmail
	}
	s.accounts[email] = &account{
		email:        email,
		passwordHash: hash,
		walletID:     uuid.New().String(),
		balance:      s.openingBalance,
	}
	return s.issueToken(email), nil
}

// Login checks the credentials and returns a fresh bearer token.
func (s *Store) Login(email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[email]
	if !exists {
		return "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	return s.issueToken(email), nil
}

// issueToken mints a token for the email. Caller must hold s.mu.
func (s *Store) issueToken(email string) string {
	token := uuid.New().String()
	s.tokens[token] = email
	return token
}

// Authenticate resolves a bearer token to the email it was issued for.
func (s *Store) Authenticate(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return email, nil
}

// Balance returns the current balance of the account.
func (s *Store) Balance(email string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[email]
	if !exists {
		return 0, ErrUnknownAccount
	}
	return acc.balance, nil
}

// Transfer moves amount between two accounts, recording an OUTCOME entry for
// the sender and an INCOME entry for the receiver.
func (s *Store) Transfer(senderEmail, receiverEmail string, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sender, exists := s.accounts[senderEmail]
	if !exists {
		return ErrUnknownAccount
	}
	receiver, exists := s.accounts[receiverEmail]
	if !exists {
		return ErrUnknownAccount
	}
	if sender.balance < amount {
		return ErrInsufficientFunds
	}

	sender.balance -= amount
	receiver.balance += amount

	createdAt := s.now().UTC().Format(time.RFC3339)
	sender.transactions = append(sender.transactions, api.Transaction{
		Type:            api.TransactionOutcome,
		Amount:          amount,
		CreatedAt:       createdAt,
		RelatedWalletID: receiver.walletID,
	})
	receiver.transactions = append(receiver.transactions, api.Transaction{
		Type:            api.TransactionIncome,
		Amount:          amount,
		CreatedAt:       createdAt,
		RelatedWalletID: sender.walletID,
	})
	return nil
}

// InstantDebit credits the collector with funds pulled from the payer's bank.
// The payer is external to the wallet, so only the bank name is recorded.
func (s *Store) InstantDebit(collectorEmail string, amount float64, bankName string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	collector, exists := s.accounts[collectorEmail]
	if !exists {
		return ErrUnknownAccount
	}

	collector.balance += amount
	collector.transactions = append(collector.transactions, api.Transaction{
		Type:            api.TransactionIncome,
		Amount:          amount,
		CreatedAt:       s.now().UTC().Format(time.RFC3339),
		RelatedBankName: bankName,
	})
	return nil
}

// EmailByWalletID resolves a wallet id to the owning account's email.
func (s *Store) EmailByWalletID(walletID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.walletID == walletID {
			return acc.email, nil
		}
	}
	return "", ErrUnknownWallet
}

// WalletID returns the wallet id of the account.
func (s *Store) WalletID(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[email]
	if !exists {
		return "", ErrUnknownAccount
	}
	return acc.walletID, nil
}

// Transactions returns a copy of the account's history, oldest first.
func (s *Store) Transactions(email string) ([]api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[email]
	if !exists {
		return nil, ErrUnknownAccount
	}
	history := make([]api.Transaction, len(acc.transactions))
	copy(history, acc.transactions)
	return history, nil
}
