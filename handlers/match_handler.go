package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tennis-club/middleware"
	"github.com/Dosada05/tennis-club/services"
)

type MatchHandler struct {
	winnerService services.WinnerService
	matchService  services.MatchService
}

func NewMatchHandler(ws services.WinnerService, ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		winnerService: ws,
		matchService:  ms,
	}
}

// selectWinnerRequest - тело запроса выбора победителя. MatchID можно
// опустить, но если он указан, то должен совпадать с ID из пути.
type selectWinnerRequest struct {
	MatchID          int `json:"matchId"`
	SelectedWinnerID int `json:"selectedWinnerId"`
}

// SelectWinner godoc
// @Summary Выбрать победителя матча
// @Tags matches
// @Description Участник матча указывает победителя. Матч завершается, когда оба игрока выбрали одного и того же победителя.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body selectWinnerRequest true "matchId и selectedWinnerId"
// @Success 200 {object} services.SelectionResult "pending, completed или disputed"
// @Failure 400 {object} map[string]string "Некорректное тело или кандидат"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не участник матча"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Матч уже завершен с другим победителем"
// @Failure 500 {object} map[string]string "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /matches/{matchID}/select-winner [post]
func (h *MatchHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input selectWinnerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchID != 0 && input.MatchID != matchID {
		badRequestResponse(w, r, errors.New("matchId in body does not match the URL"))
		return
	}
	// отсутствующий selectedWinnerId (0) отклоняет сервис после проверки участия

	result, err := h.winnerService.SubmitSelection(r.Context(), matchID, currentUserID, input.SelectedWinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch godoc
// @Summary Детали матча
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} services.MatchDetail
// @Failure 403 {object} map[string]string "Не участник матча"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Security BearerAuth
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	detail, err := h.matchService.GetMatchDetail(r.Context(), matchID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": detail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	matches, err := h.matchService.ListForPlayer(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HideMatch скрывает матч из истории текущего игрока.
func (h *MatchHandler) HideMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.matchService.Hide(r.Context(), matchID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
