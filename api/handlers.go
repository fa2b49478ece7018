package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/orchestrator"
	"github.com/gistahq/gista/pkg/storage"
)

// namespaceHeader scopes a request to one tenant. Absent means the default
// namespace.
const namespaceHeader = "X-Namespace"

// OpenRequest is the body for POST /conversations.
type OpenRequest struct {
	Files     []string `json:"files"`
	URLs      []string `json:"urls"`
	ID        string   `json:"id,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
	Overwrite bool     `json:"overwrite,omitempty"`
}

// OpenResponse describes the conversation after opening, with the model's
// reply when a prompt was included.
type OpenResponse struct {
	ID        string   `json:"id"`
	Namespace string   `json:"namespace,omitempty"`
	Files     []string `json:"files"`
	URLs      []string `json:"urls"`
	TurnCount int      `json:"turn_count"`
	Reply     string   `json:"reply,omitempty"`
}

// MessageRequest is the body for POST /conversations/:id/messages.
type MessageRequest struct {
	Prompt string `json:"prompt"`
}

// MessageResponse carries the model's reply.
type MessageResponse struct {
	Reply     string `json:"reply"`
	TurnCount int    `json:"turn_count"`
}

// HistoryResponse contains the serialized history for a conversation.
type HistoryResponse struct {
	ID            string            `json:"id"`
	Namespace     string            `json:"namespace,omitempty"`
	History       json.RawMessage   `json:"history"`
	ArtifactIndex map[string]string `json:"artifact_index"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleOpen opens or resumes a conversation, ingesting any inputs not yet
// part of it, and optionally sends one prompt.
func (s *Server) handleOpen(c *fiber.Ctx) error {
	var body OpenRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(body.Files) == 0 && len(body.URLs) == 0 && body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "files, urls, or id required"})
	}

	active, err := s.sessions.Open(c.Context(), orchestrator.Request{
		Files:     body.Files,
		URLs:      body.URLs,
		ID:        body.ID,
		Namespace: c.Get(namespaceHeader),
		Overwrite: body.Overwrite,
	})
	if err != nil {
		s.logger.Error("opening conversation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	resp := OpenResponse{
		ID:        active.Conversation.ID,
		Namespace: active.Conversation.Namespace,
		Files:     active.Conversation.Files,
		URLs:      active.Conversation.URLs,
	}

	if body.Prompt != "" {
		reply, err := active.Send(c.Context(), body.Prompt)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
		}
		resp.Reply = reply
	}

	if err := active.Save(c.Context()); err != nil {
		s.logger.Error("saving conversation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save conversation"})
	}

	resp.TurnCount = len(active.Conversation.Turns)
	return c.JSON(resp)
}

// handleMessage sends a follow-up prompt over an open conversation.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	id := c.Params("id")

	var body MessageRequest
	if err := c.BodyParser(&body); err != nil || body.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "prompt required"})
	}

	active, err := s.sessions.Open(c.Context(), orchestrator.Request{
		ID:        id,
		Namespace: c.Get(namespaceHeader),
	})
	if err != nil {
		s.logger.Error("resuming conversation failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	reply, err := active.Send(c.Context(), body.Prompt)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	if err := active.Save(c.Context()); err != nil {
		s.logger.Error("saving conversation failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save conversation"})
	}

	return c.JSON(MessageResponse{
		Reply:     reply,
		TurnCount: len(active.Conversation.Turns),
	})
}

// handleHistory returns the persisted history for a conversation.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	conv, err := s.storer.Load(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "conversation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load conversation"})
	}

	history, err := conversation.EncodeTurns(conv.Turns, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to encode history"})
	}

	return c.JSON(HistoryResponse{
		ID:            conv.ID,
		Namespace:     conv.Namespace,
		History:       history,
		ArtifactIndex: conv.ArtifactIndex,
	})
}

// handleList returns conversation summaries, newest first.
func (s *Server) handleList(c *fiber.Ctx) error {
	summaries, err := s.storer.Query(c.Context(), storage.QueryOptions{
		Offset:    c.QueryInt("offset"),
		Limit:     c.QueryInt("limit"),
		Filter:    c.Query("filter"),
		Namespace: c.Get(namespaceHeader),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to query conversations"})
	}

	return c.JSON(map[string]any{
		"count":         len(summaries),
		"conversations": summaries,
	})
}

// handleDelete removes a conversation and evicts any live session for it.
func (s *Server) handleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	namespace := c.Get(namespaceHeader)

	s.sessions.Evict(namespace, id)
	if err := s.storer.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete conversation"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
