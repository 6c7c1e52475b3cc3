package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finquest-server/internal/app"
	"finquest-server/internal/model"
	"finquest-server/internal/transport/http/middleware"
	"finquest-server/internal/transport/http/response"
)

const dateLayout = "2006-01-02"

type TransactionHandler struct {
	txService *app.TransactionService
	loc       *time.Location
}

type SaveTransactionRequest struct {
	Category    string     `json:"category"`
	Type        string     `json:"type"`
	QuestID     *uint      `json:"questId"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func NewTransactionHandler(txService *app.TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{txService: txService, loc: loc}
}

func (h *TransactionHandler) Save(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req SaveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	input := app.SaveTransactionInput{
		UserID:      userID,
		Category:    req.Category,
		Type:        req.Type,
		QuestID:     req.QuestID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.CreatedAt != nil {
		input.CreatedAt = *req.CreatedAt
	}

	tx, err := h.txService.SaveTransaction(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err, "save transaction failed")
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "transaction saved",
		Data:    tx,
	})
}

// ListMine lists the caller's transactions, narrowed by at most one of the
// category, type, questId or date query parameters.
func (h *TransactionHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var filter, value string
	for _, key := range []string{"category", "type", "questId", "date"} {
		v, present := c.GetQuery(key)
		if !present {
			continue
		}
		if filter != "" {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "use at most one filter")
			return
		}
		if v == "" {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "empty "+key+" filter")
			return
		}
		filter, value = key, v
	}

	ctx := c.Request.Context()
	var (
		txs []model.Transaction
		err error
	)
	switch filter {
	case "category":
		category, parseErr := model.ParseCategory(value)
		if parseErr != nil {
			response.FromError(c, app.ErrInvalidCategory, "")
			return
		}
		txs, err = h.txService.GetTransactionsByUserIDAndCategory(ctx, userID, category)
	case "type":
		txType, parseErr := model.ParseTransactionType(value)
		if parseErr != nil {
			response.FromError(c, app.ErrInvalidTransactionType, "")
			return
		}
		txs, err = h.txService.GetTransactionsByUserIDAndType(ctx, userID, txType)
	case "questId":
		questID, valid := parseID(value)
		if !valid {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid quest id")
			return
		}
		txs, err = h.txService.GetTransactionsByUserIDAndQuestID(ctx, userID, questID)
	case "date":
		date, parseErr := time.ParseInLocation(dateLayout, value, h.loc)
		if parseErr != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		txs, err = h.txService.GetTransactionsByUserIDAndDate(ctx, userID, date)
	default:
		txs, err = h.txService.GetTransactionsByUserID(ctx, userID)
	}
	if err != nil {
		response.FromError(c, err, "list transactions failed")
		return
	}
	response.OK(c, nonNil(txs))
}

func (h *TransactionHandler) ListByCategory(c *gin.Context) {
	category, err := model.ParseCategory(c.Param("category"))
	if err != nil {
		response.FromError(c, app.ErrInvalidCategory, "")
		return
	}
	txs, err := h.txService.GetTransactionsByCategory(c.Request.Context(), category)
	if err != nil {
		response.FromError(c, err, "list transactions failed")
		return
	}
	response.OK(c, nonNil(txs))
}

func (h *TransactionHandler) ListByType(c *gin.Context) {
	txType, err := model.ParseTransactionType(c.Param("type"))
	if err != nil {
		response.FromError(c, app.ErrInvalidTransactionType, "")
		return
	}
	txs, err := h.txService.GetTransactionsByType(c.Request.Context(), txType)
	if err != nil {
		response.FromError(c, err, "list transactions failed")
		return
	}
	response.OK(c, nonNil(txs))
}

func (h *TransactionHandler) ListByQuest(c *gin.Context) {
	questID, ok := parseID(c.Param("questId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid quest id")
		return
	}
	txs, err := h.txService.GetTransactionsByQuestID(c.Request.Context(), questID)
	if err != nil {
		response.FromError(c, err, "list transactions failed")
		return
	}
	response.OK(c, nonNil(txs))
}

func nonNil(txs []model.Transaction) []model.Transaction {
	if txs == nil {
		return []model.Transaction{}
	}
	return txs
}
