package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/courier-chat/courier/pkg/api"
	"github.com/courier-chat/courier/pkg/auth"
	"github.com/courier-chat/courier/pkg/observability"
	"github.com/courier-chat/courier/pkg/storage"
)

// Handler holds the route handlers and their collaborators.
type Handler struct {
	store      storage.Store
	verifier   *auth.Verifier
	hasher     *auth.Hasher
	tokens     *auth.TokenService
	validation api.ValidationConfig
	logger     *slog.Logger
	maxBody    int64
}

// HandlerConfig holds optional handler settings.
type HandlerConfig struct {
	Validation  api.ValidationConfig
	MaxBodySize int64
	Logger      *slog.Logger
}

// NewHandler creates the route handler set.
func NewHandler(store storage.Store, verifier *auth.Verifier, hasher *auth.Hasher, tokens *auth.TokenService, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 1 << 20
	}
	zero := api.ValidationConfig{}
	if cfg.Validation == zero {
		cfg.Validation = api.DefaultValidationConfig()
	}
	return &Handler{
		store:      store,
		verifier:   verifier,
		hasher:     hasher,
		tokens:     tokens,
		validation: cfg.Validation,
		logger:     cfg.Logger,
		maxBody:    cfg.MaxBodySize,
	}
}

// Routes returns the fully assembled handler: route mux wrapped in the
// middleware chain. The auth middleware resolves identities for every
// route; guards inside individual handlers decide authorization.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)

	mux.HandleFunc("GET /users", h.handleListUsers)
	mux.HandleFunc("GET /users/{username}", h.handleGetUser)
	mux.HandleFunc("GET /users/{username}/to", h.handleMessagesTo)
	mux.HandleFunc("GET /users/{username}/from", h.handleMessagesFrom)

	mux.HandleFunc("POST /messages", h.handleSendMessage)
	mux.HandleFunc("GET /messages/{id}", h.handleGetMessage)
	mux.HandleFunc("POST /messages/{id}/read", h.handleMarkRead)

	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /readyz", h.handleReadyz)

	// Unmatched routes get the JSON envelope, not the stdlib text 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, api.NewNotFoundError("Not Found"))
	})

	return Chain(mux,
		Recovery(h.logger),
		RequestID(),
		Logging(h.logger),
		observability.MetricsMiddleware,
		auth.Middleware(h.tokens),
	)
}

// handleRegister handles POST /auth/register: create the user, hash the
// password, and log the new account in by issuing a token.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if apiErr := h.decode(w, r, &req); apiErr != nil {
		WriteError(w, apiErr)
		return
	}
	if apiErr := api.ValidateRegisterRequest(&req, h.validation); apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	user := &api.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		JoinAt:    time.Now(),
	}
	if err := h.store.CreateUser(r.Context(), user, hash); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			WriteError(w, api.NewConflictError(fmt.Sprintf("Username %q is taken.", req.Username)))
			return
		}
		WriteErrorFrom(w, err)
		return
	}

	token, err := h.tokens.Issue(auth.Claim{Username: req.Username})
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, api.TokenResponse{Token: token})
}

// handleLogin handles POST /auth/login.
//
// The failure path is uniform: an unknown username and a wrong password
// produce the identical response. A store outage is not an auth failure
// and surfaces as 500.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if apiErr := h.decode(w, r, &req); apiErr != nil {
		WriteError(w, apiErr)
		return
	}
	if apiErr := api.ValidateLoginRequest(&req); apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	ok, err := h.verifier.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	if !ok {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		WriteError(w, api.NewUnauthorizedError("Invalid username or password."))
		return
	}

	// Auth is decided; the timestamp write is best-effort bookkeeping.
	h.verifier.RecordLogin(r.Context(), req.Username)
	observability.LoginsTotal.WithLabelValues("success").Inc()

	token, err := h.tokens.Issue(auth.Claim{Username: req.Username})
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.TokenResponse{Token: token})
}

// handleListUsers handles GET /users.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.UsersResponse{Users: users})
}

// handleGetUser handles GET /users/{username}.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireSameUser(id, username); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), username)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.UserResponse{User: user})
}

// handleMessagesTo handles GET /users/{username}/to.
func (h *Handler) handleMessagesTo(w http.ResponseWriter, r *http.Request) {
	h.handleUserMessages(w, r, h.store.MessagesTo)
}

// handleMessagesFrom handles GET /users/{username}/from.
func (h *Handler) handleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	h.handleUserMessages(w, r, h.store.MessagesFrom)
}

func (h *Handler) handleUserMessages(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, username string) ([]api.Message, error)) {
	username := r.PathValue("username")

	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireSameUser(id, username); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	// The listing is scoped to an existing user; a missing one is a 404.
	if _, err := h.store.GetUser(r.Context(), username); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	messages, err := list(r.Context(), username)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.MessagesResponse{Messages: messages})
}

// handleSendMessage handles POST /messages. The sender is always the
// authenticated identity.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	var req api.SendMessageRequest
	if apiErr := h.decode(w, r, &req); apiErr != nil {
		WriteError(w, apiErr)
		return
	}
	if apiErr := api.ValidateSendMessageRequest(&req, h.validation); apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	msg, err := h.store.CreateMessage(r.Context(), id.Username, req.ToUsername, req.Body)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, api.NewNotFoundError(fmt.Sprintf("No such user: %s", req.ToUsername)))
			return
		}
		WriteErrorFrom(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, api.MessageResponse{Message: msg})
}

// handleGetMessage handles GET /messages/{id}. Read access requires being
// a participant: the sender or the recipient.
func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	msgID, apiErr := pathID(r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	msg, err := h.store.GetMessage(r.Context(), msgID)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	if err := auth.RequireMessageParticipant(id, msg); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	detail, err := h.messageDetail(r, msg)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.MessageResponse{Message: detail})
}

// handleMarkRead handles POST /messages/{id}/read. Only the recipient may
// acknowledge receipt; the sender cannot mark their own sent message read.
func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	msgID, apiErr := pathID(r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	msg, err := h.store.GetMessage(r.Context(), msgID)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	if err := auth.RequireMessageRecipient(id, msg); err != nil {
		WriteErrorFrom(w, err)
		return
	}

	updated, err := h.store.MarkRead(r.Context(), msgID)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.MessageResponse{
		Message: api.MessageReceipt{ID: updated.ID, ReadAt: updated.ReadAt},
	})
}

// handleHealthz handles GET /healthz.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// handleReadyz handles GET /readyz: readiness includes the store.
func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("store unavailable\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// messageDetail expands a message with both participant profiles.
func (h *Handler) messageDetail(r *http.Request, msg *api.Message) (*api.MessageDetail, error) {
	from, err := h.store.GetUser(r.Context(), msg.FromUsername)
	if err != nil {
		return nil, fmt.Errorf("resolving sender: %w", err)
	}
	to, err := h.store.GetUser(r.Context(), msg.ToUsername)
	if err != nil {
		return nil, fmt.Errorf("resolving recipient: %w", err)
	}
	return &api.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: userRef(from),
		ToUser:   userRef(to),
	}, nil
}

func userRef(u *api.User) api.UserRef {
	return api.UserRef{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, *api.APIError) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, api.NewBadRequestError("malformed message id")
	}
	return id, nil
}

// decode reads a JSON request body with a size cap.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) *api.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &api.APIError{
				Message: fmt.Sprintf("request body too large (max %d bytes)", h.maxBody),
				Status:  http.StatusRequestEntityTooLarge,
			}
		}
		return api.NewBadRequestError("invalid JSON body")
	}
	return nil
}

// writeJSON serializes a success payload.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
