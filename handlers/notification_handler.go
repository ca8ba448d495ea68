package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-club/middleware"
	"github.com/Dosada05/tennis-club/services"
)

const defaultNotificationsLimit = 30

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// ListNotifications godoc
// @Summary Уведомления текущего пользователя
// @Tags notifications
// @Produce json
// @Param unread query bool false "Только непрочитанные"
// @Param limit query int false "Максимум записей"
// @Success 200 {object} services.NotificationList
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true" || q.Get("unread") == "1"
	limit := toInt(q.Get("limit"), defaultNotificationsLimit)

	list, err := h.notificationService.List(r.Context(), currentUserID, unreadOnly, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	n, err := h.notificationService.MarkAllRead(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"marked": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
