package store

import (
	"context"
	"errors"
	"time"

	"bank-cards-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors raised by storage backends before classification.
var (
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Username string
	Role     models.Role
}

// CreateCardParams contains the parameters for issuing a card.
type CreateCardParams struct {
	UserId         string
	CardNumber     string
	Owner          string
	ExpiryDate     time.Time
	InitialBalance decimal.Decimal
}

// UpdateCardParams carries the admin-editable card fields.
type UpdateCardParams struct {
	CardId     string
	Owner      string
	ExpiryDate time.Time
}

// ListCardsParams selects one page of a user's cards. SortBy is one of the
// SortField constants; an unknown value falls back to created_at.
type ListCardsParams struct {
	UserId  string
	Page    int
	Size    int
	SortBy  string
	SortAsc bool
}

const (
	SortFieldCreatedAt  = "createdAt"
	SortFieldExpiryDate = "expiryDate"
	SortFieldBalance    = "balance"
	SortFieldOwner      = "owner"
	SortFieldStatus     = "status"
)

// TransferParams describes a movement of funds between two cards.
type TransferParams struct {
	FromCardId  string
	ToCardId    string
	Amount      decimal.Decimal
	Description string
}

// CreateBlockRequestParams opens a block request on behalf of the card owner.
type CreateBlockRequestParams struct {
	CardId      string
	RequesterId string
	Reason      string
}

// ReconcileResult reports the ledger-derived balance of a card next to its stored balance.
type ReconcileResult struct {
	CardId            string
	StoredBalance     decimal.Decimal
	CalculatedBalance decimal.Decimal
	Entries           int
}

func (r ReconcileResult) Balanced() bool {
	return r.StoredBalance.Equal(r.CalculatedBalance)
}

// CardNumberCodec is the reversible at-rest encoding of card numbers.
// Fingerprint is a deterministic keyed digest used for uniqueness and lookup.
type CardNumberCodec interface {
	Encode(plaintext string) (string, error)
	Decode(ciphertext string) (string, error)
	Fingerprint(plaintext string) string
}

// CardStore defines the contract of the card backend. Every method returns
// errors classified by the taxonomy in errors.go.
type CardStore interface {
	// --- Account directory ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUser(ctx context.Context, userId string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	IsCardOwnedBy(ctx context.Context, cardId, userId string) (bool, error)

	// --- Cards ---
	CreateCard(ctx context.Context, params CreateCardParams) (*models.Card, error)
	GetCard(ctx context.Context, cardId string) (*models.Card, error)
	GetCardByNumber(ctx context.Context, cardNumber string) (*models.Card, error)
	ListCards(ctx context.Context) ([]models.Card, error)
	ListUserCards(ctx context.Context, params ListCardsParams) ([]models.Card, int, error)
	GetUserCards(ctx context.Context, userId string) ([]models.Card, error)
	UpdateCard(ctx context.Context, params UpdateCardParams) (*models.Card, error)
	TopUp(ctx context.Context, cardId string, amount decimal.Decimal) (*models.Card, error)
	BlockCard(ctx context.Context, cardId string) (*models.Card, error)
	UnblockCard(ctx context.Context, cardId string) (*models.Card, error)
	DeleteCard(ctx context.Context, cardId string) error
	ExpireCards(ctx context.Context, asOf time.Time) (int, error)
	GetUserBalance(ctx context.Context, userId string) (*models.UserBalance, error)

	// --- Transfers ---
	Transfer(ctx context.Context, params TransferParams) (*models.Transaction, error)
	CreatePendingTransfer(ctx context.Context, params TransferParams) (*models.Transaction, error)
	ExecuteTransfer(ctx context.Context, transactionId string) (*models.Transaction, error)
	CancelTransfer(ctx context.Context, transactionId string) (*models.Transaction, error)
	GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	ListUserTransactions(ctx context.Context, userId string) ([]models.Transaction, error)
	ListCardTransactions(ctx context.Context, cardId string) ([]models.Transaction, error)
	ReconcileCard(ctx context.Context, cardId string) (*ReconcileResult, error)

	// --- Block requests ---
	CreateBlockRequest(ctx context.Context, params CreateBlockRequestParams) (*models.BlockRequest, error)
	GetBlockRequest(ctx context.Context, requestId string) (*models.BlockRequest, error)
	ApproveBlockRequest(ctx context.Context, requestId, adminId string) (*models.BlockRequest, error)
	RejectBlockRequest(ctx context.Context, requestId, adminId string) (*models.BlockRequest, error)
	ListBlockRequests(ctx context.Context) ([]models.BlockRequest, error)
	ListBlockRequestsByStatus(ctx context.Context, status models.BlockRequestStatus) ([]models.BlockRequest, error)
	ListBlockRequestsByRequester(ctx context.Context, requesterId string) ([]models.BlockRequest, error)

	// --- Lifecycle ---
	Close()
}
