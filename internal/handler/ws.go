package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/chat"
	ws "github.com/beautyvilla/server/internal/websocket"
)

// ServeWs upgrades the connection, admits the credential carried in
// the token query parameter and registers the client. A failed
// admission closes the socket with a policy violation before any
// registry entry exists.
func ServeWs(service *chat.Service, registry *chat.Registry, tokenSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("failed to accept websocket connection: %v", err)
			return
		}

		identity, err := auth.Admit(r.URL.Query().Get("token"), tokenSecret)
		if err != nil {
			reason := "Invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				reason = "Authentication required"
			}
			conn.Close(websocket.StatusPolicyViolation, reason)
			return
		}

		log.Printf("upgraded connection for participant %d (%s)", identity.ID, identity.Role)

		c := ws.NewClient(conn, identity, service, registry)
		registry.Register(identity.ID, identity.Role, c.ConnID, c)

		// Block on the read pump; the request context is cancelled as
		// soon as this handler returns, which also stops the write
		// pump.
		go c.WritePump(ctx)
		c.ReadPump(ctx)
	}
}
