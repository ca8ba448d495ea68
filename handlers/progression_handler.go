package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-club/middleware"
	"github.com/Dosada05/tennis-club/services"
)

const defaultTransactionsLimit = 50

type ProgressionHandler struct {
	progressionService services.ProgressionService
	achievementService services.AchievementService
}

func NewProgressionHandler(ps services.ProgressionService, as services.AchievementService) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: ps,
		achievementService: as,
	}
}

// GetMyProgress godoc
// @Summary Уровень и опыт текущего игрока
// @Tags progression
// @Produce json
// @Success 200 {object} services.PlayerProgress
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /me/progress [get]
func (h *ProgressionHandler) GetMyProgress(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	progress, err := h.progressionService.GetProgress(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ProgressionHandler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	limit := toInt(r.URL.Query().Get("limit"), defaultTransactionsLimit)
	txs, err := h.progressionService.ListTransactions(r.Context(), currentUserID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": txs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ProgressionHandler) ListMyAchievements(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	achievements, err := h.achievementService.ListForPlayer(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"achievements": achievements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
