package api

import (
	"net/http"
	"time"

	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/service"
)

// AccountResponse represents the response data for a provisioned account.
// Credentials never appear here; the session is used server-side only.
type AccountResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	UseCount      int       `json:"use_count"`
	MaxUses       int       `json:"max_uses"`
	RemainingUses int       `json:"remaining_uses"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccount handles POST /api/accounts requests. Provisioning drives
// the full mailbox and verification flow, so this call can take minutes.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, accountToResponse(account))
}

// GetAccount handles GET /api/accounts/{id} requests
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	accountID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accountService.GetAccount(r.Context(), ownerID, accountID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, accountToResponse(account))
}

// ListAccounts handles GET /api/accounts requests
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, accountToResponse(account))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// accountToResponse converts a domain.Account to an AccountResponse
func accountToResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID.String(),
		Email:         account.Email,
		UseCount:      account.UseCount,
		MaxUses:       account.MaxUses,
		RemainingUses: account.RemainingUses(),
		CreatedAt:     account.CreatedAt,
	}
}
