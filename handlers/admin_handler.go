package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(s services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: s}
}

type recordActivityRequest struct {
	Type models.AchievementEventType `json:"type"`
}

// RecordActivity godoc
// @Summary Начислить опыт за активность в клубе
// @Tags admin
// @Description Бронирование корта или посещение тренировки. Только для администраторов.
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param body body recordActivityRequest true "court_booked или training_attended"
// @Success 200 {object} services.AwardResult
// @Failure 400 {object} map[string]string "Неизвестный тип активности"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Security BearerAuth
// @Router /admin/players/{playerID}/activities [post]
func (h *AdminHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordActivityRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Type == "" {
		badRequestResponse(w, r, errors.New("type is required"))
		return
	}

	award, err := h.adminService.RecordActivity(r.Context(), playerID, input.Type)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"award": award}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
