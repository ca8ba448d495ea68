package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Dosada05/tennis-club/middleware"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/services"
)

type MatchRequestHandler struct {
	requestService services.MatchRequestService
}

func NewMatchRequestHandler(s services.MatchRequestService) *MatchRequestHandler {
	return &MatchRequestHandler{requestService: s}
}

// CreateRequest godoc
// @Summary Предложить матч другому игроку
// @Tags match-requests
// @Accept json
// @Produce json
// @Param body body services.CreateMatchRequestInput true "Соперник, время и сообщение"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Соперник не найден"
// @Failure 409 {object} map[string]string "Такая заявка уже есть"
// @Security BearerAuth
// @Router /match-requests [post]
func (h *MatchRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateMatchRequestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req, err := h.requestService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match_request": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchRequestHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	match, err := h.requestService.Accept(r.Context(), requestID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchRequestHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.requestService.Decline(r.Context(), requestID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchRequestHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.requestService.ListIncoming)
}

func (h *MatchRequestHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.requestService.ListOutgoing)
}

type listRequestsFunc func(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error)

func (h *MatchRequestHandler) list(w http.ResponseWriter, r *http.Request, fetch listRequestsFunc) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	status, err := parseRequestStatus(r.URL.Query().Get("status"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	requests, err := fetch(r.Context(), currentUserID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseRequestStatus(s string) (*models.MatchRequestStatus, error) {
	if s == "" {
		return nil, nil
	}
	status := models.MatchRequestStatus(s)
	switch status {
	case models.MatchRequestPending, models.MatchRequestAccepted, models.MatchRequestDeclined:
		return &status, nil
	}
	return nil, fmt.Errorf("invalid status filter %q", s)
}
