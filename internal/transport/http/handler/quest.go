package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finquest-server/internal/app"
	"finquest-server/internal/model"
	"finquest-server/internal/transport/http/response"
)

type QuestHandler struct {
	questService *app.QuestService
}

type CreateQuestRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"targetAmount"`
}

func NewQuestHandler(questService *app.QuestService) *QuestHandler {
	return &QuestHandler{questService: questService}
}

func (h *QuestHandler) Create(c *gin.Context) {
	var req CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	quest, err := h.questService.CreateQuest(c.Request.Context(), app.CreateQuestInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		response.FromError(c, err, "create quest failed")
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "quest created",
		Data:    quest,
	})
}

func (h *QuestHandler) List(c *gin.Context) {
	quests, err := h.questService.ListQuests(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "list quests failed")
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}
	response.OK(c, quests)
}

func (h *QuestHandler) Get(c *gin.Context) {
	questID, ok := parseID(c.Param("questId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid quest id")
		return
	}
	quest, err := h.questService.GetQuest(c.Request.Context(), questID)
	if err != nil {
		response.FromError(c, err, "get quest failed")
		return
	}
	response.OK(c, quest)
}
