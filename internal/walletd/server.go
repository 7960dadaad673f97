package walletd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rescp17/pocketWallet/api"
)

// Server exposes a Store over the wallet REST surface.
type Server struct {
	store  *Store
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates and initializes a new Server instance.
func NewServer(store *Store) *Server {
	s := &Server{
		store:  store,
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}
	s.registerRoutes()
	return s
}

// ServeHTTP allows the Server struct to satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// registerRoutes connects all handlers and middleware. The auth endpoints
// are open; everything touching a wallet requires a bearer token.
func (s *Server) registerRoutes() {
	s.mux.Handle("POST /users/login", http.HandlerFunc(s.handleLogin))
	s.mux.Handle("POST /users/register", http.HandlerFunc(s.handleRegister))

	s.mux.Handle("GET /wallet/balance", s.authMiddleware(http.HandlerFunc(s.handleBalance)))
	s.mux.Handle("POST /wallet/transfer", s.authMiddleware(http.HandlerFunc(s.handleTransfer)))
	s.mux.Handle("POST /wallet/instant-debit", s.authMiddleware(http.HandlerFunc(s.handleInstantDebit)))
	s.mux.Handle("GET /wallet/user-email", s.authMiddleware(http.HandlerFunc(s.handleUserEmail)))
	s.mux.Handle("GET /transactions", s.authMiddleware(http.HandlerFunc(s.handleTransactions)))
}

// authMiddleware rejects requests without a recognized bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}
		if _, err := s.store.Authenticate(token); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}
	token, err := s.store.Login(req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login rejected", "email", req.Email, "error", err)
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("email and password are required"))
		return
	}
	token, err := s.store.Register(req.Email, req.Password)
	if err != nil {
		s.logger.Warn("registration rejected", "email", req.Email, "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody("user already exists"))
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.store.Balance(r.URL.Query().Get("email"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req api.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}
	if err := s.store.Transfer(req.SenderEmail, req.ReceiverEmail, req.Amount); err != nil {
		s.logger.Warn("transfer rejected",
			"sender", req.SenderEmail, "receiver", req.ReceiverEmail,
			"amount", req.Amount, "error", err)
		writeJSON(w, transferStatus(err), errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, "transfer completed")
}

func (s *Server) handleInstantDebit(w http.ResponseWriter, r *http.Request) {
	var req api.InstantDebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}
	if err := s.store.InstantDebit(req.CollectorEmail, req.Amount, req.BankName); err != nil {
		s.logger.Warn("instant debit rejected",
			"collector", req.CollectorEmail, "bank", req.BankName, "error", err)
		writeJSON(w, transferStatus(err), errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "APPROVED"})
}

func (s *Server) handleUserEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.store.EmailByWalletID(r.URL.Query().Get("walletId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, email)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.Transactions(r.URL.Query().Get("email"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	if history == nil {
		history = []api.Transaction{}
	}
	writeJSON(w, http.StatusOK, history)
}

func transferStatus(err error) int {
	if errors.Is(err, ErrUnknownAccount) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
