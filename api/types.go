package api

// Transaction directions as reported by the backend.
const (
	TransactionIncome  = "INCOME"
	TransactionOutcome = "OUTCOME"
)

// LoginRequest defines the structure for the /users/login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest defines the structure for the /users/register request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TransferRequest defines the structure for the /wallet/transfer request.
type TransferRequest struct {
	SenderEmail   string  `json:"senderEmail"`
	ReceiverEmail string  `json:"receiverEmail"`
	Amount        float64 `json:"amount"`
}

// InstantDebitRequest defines the structure for the /wallet/instant-debit
// request. The collector asks the payer's bank to push funds immediately;
// the CBU identifies the payer's bank account and is passed through opaque.
type InstantDebitRequest struct {
	PayerEmail     string  `json:"payerEmail"`
	CollectorEmail string  `json:"collectorEmail"`
	Amount         float64 `json:"amount"`
	BankName       string  `json:"bankName"`
	CBU            string  `json:"cbu"`
}

// Transaction is one entry of an account's history. Produced by the backend;
// the client only decodes it. CreatedAt is kept as the raw backend string.
type Transaction struct {
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	CreatedAt       string  `json:"createdAt"`
	RelatedWalletID string  `json:"relatedWalletId,omitempty"`
	RelatedBankName string  `json:"relatedBankName,omitempty"`
}
