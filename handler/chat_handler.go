package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
)

type ChatHandler struct {
	rag      *service.RAGService
	sessions *service.SessionManager
}

func NewChatHandler(rag *service.RAGService, sessions *service.SessionManager) *ChatHandler {
	return &ChatHandler{
		rag:      rag,
		sessions: sessions,
	}
}

// HandleAsk answers one question within a session. A missing session id
// starts a fresh session whose id is returned for follow-up questions.
func (h *ChatHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Question is required",
		})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	session := h.sessions.Get(req.SessionID)

	answer, err := h.rag.Answer(c.Request.Context(), req.Question, session)
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		if errors.Is(err, types.ErrGeneration) {
			status = http.StatusBadGateway
			message = "Could not generate an answer, please retry"
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: message,
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.AskResponse{
			SessionID: req.SessionID,
			Answer:    answer.Content,
			Sources:   answer.Sources,
		},
	})
}

// HandleReset clears a session's conversation history.
func (h *ChatHandler) HandleReset(c *gin.Context) {
	var req types.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "session_id is required",
		})
		return
	}
	h.sessions.Reset(req.SessionID)
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
	})
}
