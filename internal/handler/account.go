package handler

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/beautyvilla/server/internal/auth"
	"github.com/beautyvilla/server/internal/model"
	"github.com/beautyvilla/server/internal/store"
)

const tokenExpiry = 7 * 24 * time.Hour

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
	Token   string     `json:"token"`
}

// Register handles account creation for the identity provider the chat
// core depends on.
func Register(users store.UserStore, tokenSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if len(req.Name) < 2 {
			writeError(w, http.StatusBadRequest, "Name must be at least 2 characters")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeError(w, http.StatusBadRequest, "Please enter a valid email address")
			return
		}
		if len(req.Password) < 6 {
			writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}

		hashedPw, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("argon2id hash creation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		user, err := users.CreateUser(ctx, store.CreateUserParams{
			Name:           req.Name,
			Email:          req.Email,
			Role:           model.RoleCustomer,
			HashedPassword: hashedPw,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				writeError(w, http.StatusBadRequest, "User already exists with this email")
				return
			}
			log.Printf("failed to create user entry: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		token, err := auth.MakeJWT(auth.Identity{ID: user.ID, Role: user.Role}, tokenSecret, tokenExpiry)
		if err != nil {
			log.Printf("failed to make JWT: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		slog.InfoContext(ctx, "user signed up",
			slog.String("email", user.Email))

		writeJSON(w, http.StatusCreated, authResponse{
			Message: "User registered successfully",
			User:    user,
			Token:   token,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues the JWT used by both the HTTP
// middleware and websocket admission.
func Login(users store.UserStore, tokenSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := users.GetUserByEmail(ctx, req.Email)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}

		ok, err := auth.CheckPasswordHash(req.Password, user.HashedPassword)
		if err != nil {
			log.Printf("cannot verify password, hash may be corrupted: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}

		token, err := auth.MakeJWT(auth.Identity{ID: user.ID, Role: user.Role}, tokenSecret, tokenExpiry)
		if err != nil {
			log.Printf("failed to make JWT: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		slog.InfoContext(ctx, "user logged in",
			slog.String("email", user.Email))

		writeJSON(w, http.StatusOK, authResponse{
			Message: "Login successful",
			User:    user,
			Token:   token,
		})
	}
}

// CurrentUser returns the authenticated account.
func CurrentUser(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := auth.IdentityFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		user, err := users.GetUserByID(ctx, identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("failed to retrieve user: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
