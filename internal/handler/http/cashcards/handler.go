package cashcards_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cashcards/internal/app/cashcards"
	"cashcards/internal/auth"
	"cashcards/internal/domain"
)

var errInvalidBody = errors.New("invalid request body")

const maxBodyBytes = 4 << 10

type CashCardHandler struct {
	service cashcards.CashCardService
	logger  *zap.Logger
}

func NewCashCardHandler(s cashcards.CashCardService, l *zap.Logger) *CashCardHandler {
	return &CashCardHandler{service: s, logger: l}
}

// CashCardRequest is the body of POST and PUT. Any id or owner sent by the
// client is dropped: the id comes from storage and the owner from credentials.
type CashCardRequest struct {
	Amount *json.Number `json:"amount"`
}

type CashCardResponse struct {
	ID     int64       `json:"id"`
	Amount json.Number `json:"amount"`
	Owner  string      `json:"owner"`
}

func toResponse(card *domain.CashCard) CashCardResponse {
	return CashCardResponse{
		ID:     card.ID,
		Amount: json.Number(card.Amount.String()),
		Owner:  card.Owner,
	}
}

func (h *CashCardHandler) GetCashCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	card, err := h.service.Get(r.Context(), id, caller)
	if err != nil {
		h.writeError(w, err, "Failed to get cash card", zap.Int64("cash_card_id", id))
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(card))
}

func (h *CashCardHandler) CreateCashCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	amount, err := decodeAmount(w, r)
	if err != nil {
		h.logger.Warn("Invalid request body for CreateCashCard", zap.Error(err))
		writeBodyError(w, err)
		return
	}

	card, err := h.service.Create(r.Context(), amount, caller)
	if err != nil {
		h.writeError(w, err, "Failed to create cash card")
		return
	}
	w.Header().Set("Location", "/cashcards/"+strconv.FormatInt(card.ID, 10))
	w.WriteHeader(http.StatusCreated)
}

func (h *CashCardHandler) ListCashCards(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	page, err := parsePageRequest(r)
	if err != nil {
		h.logger.Warn("Invalid paging parameters", zap.String("query", r.URL.RawQuery), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cards, err := h.service.List(r.Context(), caller, page)
	if err != nil {
		h.writeError(w, err, "Failed to list cash cards")
		return
	}
	resp := make([]CashCardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, toResponse(card))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *CashCardHandler) UpdateCashCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}
	amount, err := decodeAmount(w, r)
	if err != nil {
		h.logger.Warn("Invalid request body for UpdateCashCard", zap.Int64("cash_card_id", id), zap.Error(err))
		writeBodyError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), id, amount, caller); err != nil {
		h.writeError(w, err, "Failed to update cash card", zap.Int64("cash_card_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CashCardHandler) DeleteCashCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, caller); err != nil {
		h.writeError(w, err, "Failed to delete cash card", zap.Int64("cash_card_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caller reads the identity put in the context by auth.BasicAuth.
func (h *CashCardHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.Name == "" {
		h.logger.Error("Request reached cash card handler without an identity", zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return "", false
	}
	return id.Name, true
}

// cardID parses the {id} path segment. An id that cannot exist is answered
// like one that does not.
func (h *CashCardHandler) cardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Info("Unparseable cash card id", zap.String("id", raw))
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *CashCardHandler) writeError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	if errors.Is(err, domain.ErrCashCardNotFound) {
		h.logger.Info("Cash card not found", fields...)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		h.logger.Warn("Rejected cash card amount", append(fields, zap.Error(err))...)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *CashCardHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// decodeAmount reads at most maxBodyBytes and checks the amount fits storage.
func decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, error) {
	var req CashCardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return decimal.Decimal{}, err
		}
		return decimal.Decimal{}, errInvalidBody
	}
	if req.Amount == nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

// parsePageRequest reads page, size and repeated sort=field[,asc|desc]
// parameters. Unparseable page or size values fall back to the defaults.
func parsePageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	var page domain.PageRequest
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil {
		page.Size = v
	}
	for _, raw := range q["sort"] {
		if raw == "" {
			continue
		}
		order, err := domain.ParseSortOrder(raw)
		if err != nil {
			return domain.PageRequest{}, err
		}
		page.Sort = append(page.Sort, order)
	}
	return page.Normalize(), nil
}
