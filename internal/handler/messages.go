package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/chat"
	"github.com/beautyvilla/server/internal/model"
)

// ListMessages serves the polling mirror of the realtime path. A
// customer gets their own conversation; an agent gets one customer's
// conversation via ?userId=N, or the per-conversation summaries with
// unread counts when no customer is named.
func ListMessages(service *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := auth.IdentityFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		if identity.Role == model.RoleAgent {
			if raw := r.URL.Query().Get("userId"); raw != "" {
				customerID, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					writeError(w, http.StatusBadRequest, "Invalid user ID")
					return
				}

				messages, err := service.History(ctx, customerID)
				if err != nil {
					log.Printf("failed to load messages: %v", err)
					writeError(w, http.StatusInternalServerError, "Server error")
					return
				}

				writeJSON(w, http.StatusOK, messages)
				return
			}

			summaries, err := service.Conversations(ctx)
			if err != nil {
				log.Printf("failed to load conversations: %v", err)
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}

			writeJSON(w, http.StatusOK, summaries)
			return
		}

		messages, err := service.History(ctx, identity.ID)
		if err != nil {
			log.Printf("failed to load messages: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		writeJSON(w, http.StatusOK, messages)
	}
}

type createMessageRequest struct {
	Content    string `json:"content"`
	CustomerID int64  `json:"userId"`
}

// CreateMessage persists a message and attempts realtime relay, the
// offline-capable twin of the websocket send.
func CreateMessage(service *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := auth.IdentityFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		var req createMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		// A customer send on this path always goes to the first agent
		// on record; a client-supplied adminId is ignored rather than
		// trusted. No agent on record leaves the message unassigned.
		// Addressing a specific agent is a websocket concern.
		var hint int64
		if identity.Role == model.RoleAgent {
			hint = req.CustomerID
		} else if agentID, err := service.FirstAgent(ctx); err == nil {
			hint = agentID
		}

		msg, err := service.Send(ctx, identity.ID, identity.Role, hint, req.Content)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrEmptyContent), errors.Is(err, chat.ErrMissingRecipient):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				log.Printf("failed to send message: %v", err)
				writeError(w, http.StatusInternalServerError, "Server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, msg)
	}
}

type markReadRequest struct {
	CustomerID int64 `json:"userId"`
}

// MarkMessagesRead clears a conversation's unread state. An agent
// names the customer; a customer implies their own conversation.
func MarkMessagesRead(service *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := auth.IdentityFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		var req markReadRequest
		if r.Body != nil {
			// An empty body is fine for customers.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		customerID := identity.ID
		if identity.Role == model.RoleAgent {
			if req.CustomerID == 0 {
				writeError(w, http.StatusBadRequest, "User ID is required")
				return
			}
			customerID = req.CustomerID
		}

		if err := service.MarkRead(ctx, customerID); err != nil {
			log.Printf("failed to mark messages read: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
