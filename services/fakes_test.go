package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx serializes transactions with one lock, like a row lock held for
// the whole transaction.
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(nil)
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
	failGet error
	failSet error
}

func newFakeMatchRepo(ms ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 100}
	for _, m := range ms {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.matches {
		if m.RequestID != nil && existing.RequestID != nil && *existing.RequestID == *m.RequestID {
			return repositories.ErrMatchRequestAlreadyUsed
		}
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	cp := *m
	r.matches[m.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	if m.WinnerID != nil {
		w := *m.WinnerID
		cp.WinnerID = &w
	}
	return &cp, nil
}

func (r *fakeMatchRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeMatchRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, matchID, winnerID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSet != nil {
		return false, r.failSet
	}
	m, ok := r.matches[matchID]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	if !m.HasParticipant(winnerID) {
		return false, repositories.ErrMatchPlayerInvalid
	}
	if m.WinnerID != nil {
		if *m.WinnerID == winnerID {
			return false, nil
		}
		return false, repositories.ErrMatchWinnerConflict
	}
	w := winnerID
	now := time.Now()
	m.WinnerID = &w
	m.Status = models.MatchStatusCompleted
	m.CompletedAt = &now
	return true, nil
}

func (r *fakeMatchRepo) ListByPlayer(_ context.Context, playerID int, includeHidden bool) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if !m.HasParticipant(playerID) || (!includeHidden && m.HiddenFor(playerID)) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) Hide(_ context.Context, matchID, playerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID]
	if !ok || !m.HasParticipant(playerID) {
		return repositories.ErrMatchNotFound
	}
	if playerID == m.Player1ID {
		m.HiddenByPlayer1 = true
	} else {
		m.HiddenByPlayer2 = true
	}
	return nil
}

func (r *fakeMatchRepo) winner(id int) *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matches[id].WinnerID
}

type selectionKey struct{ match, selector int }

type fakeSelectionRepo struct {
	mu         sync.Mutex
	selections map[selectionKey]models.WinnerSelection
	nextID     int
	failUpsert error
	failList   error
}

func newFakeSelectionRepo() *fakeSelectionRepo {
	return &fakeSelectionRepo{selections: make(map[selectionKey]models.WinnerSelection)}
}

func (r *fakeSelectionRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, matchID, selectorID, winnerID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpsert != nil {
		return false, r.failUpsert
	}
	k := selectionKey{matchID, selectorID}
	if existing, ok := r.selections[k]; ok {
		if existing.SelectedWinnerID == winnerID {
			return false, nil
		}
		existing.SelectedWinnerID = winnerID
		existing.UpdatedAt = time.Now()
		r.selections[k] = existing
		return true, nil
	}
	r.nextID++
	r.selections[k] = models.WinnerSelection{
		ID:               r.nextID,
		MatchID:          matchID,
		SelectorID:       selectorID,
		SelectedWinnerID: winnerID,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	return true, nil
}

func (r *fakeSelectionRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.WinnerSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	out := make([]models.WinnerSelection, 0, 2)
	for k, s := range r.selections {
		if k.match == matchID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSelectionRepo) count(matchID int) int {
	sels, _ := r.ListByMatch(context.Background(), nil, matchID)
	return len(sels)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(us ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1000}
	for _, u := range us {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname != nil && existing.Nickname != nil && *existing.Nickname == *u.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []int) (map[int]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+filter.Limit, len(all))
	return all[start:end], len(all), nil
}

type notified struct {
	UserID  int
	Payload models.NotificationPayload
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notified
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, userID int, payload models.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notified{UserID: userID, Payload: payload})
	return n.err
}

func (n *fakeNotifier) byKind(kind models.NotificationKind) []notified {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notified
	for _, s := range n.sent {
		if s.Payload.Kind() == kind {
			out = append(out, s)
		}
	}
	return out
}

type fakeEvaluator struct {
	mu     sync.Mutex
	events []models.AchievementEvent
	err    error
}

func (e *fakeEvaluator) Evaluate(_ context.Context, ev models.AchievementEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return e.err
}

func (e *fakeEvaluator) count(t models.AchievementEventType, playerID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == t && ev.PlayerID == playerID {
			n++
		}
	}
	return n
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) named(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

type fakeExperienceRepo struct {
	mu      sync.Mutex
	records map[int]*models.PlayerExperience
	txs     []models.XPTransaction
	failAdd error
}

func newFakeExperienceRepo() *fakeExperienceRepo {
	return &fakeExperienceRepo{records: make(map[int]*models.PlayerExperience)}
}

func (r *fakeExperienceRepo) GetByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) (*models.PlayerExperience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[playerID]
	if !ok {
		return nil, repositories.ErrExperienceNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeExperienceRepo) GetOrCreateForUpdate(_ context.Context, _ repositories.SQLExecutor, playerID int) (*models.PlayerExperience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[playerID]
	if !ok {
		rec = &models.PlayerExperience{PlayerID: playerID, CreatedAt: time.Now()}
		r.records[playerID] = rec
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeExperienceRepo) AddXP(_ context.Context, _ repositories.SQLExecutor, playerID, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd != nil {
		return 0, r.failAdd
	}
	rec, ok := r.records[playerID]
	if !ok {
		rec = &models.PlayerExperience{PlayerID: playerID}
		r.records[playerID] = rec
	}
	rec.TotalXP += amount
	return rec.TotalXP, nil
}

func (r *fakeExperienceRepo) InsertTransaction(_ context.Context, _ repositories.SQLExecutor, tx *models.XPTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = len(r.txs) + 1
	tx.CreatedAt = time.Now()
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *fakeExperienceRepo) ListTransactions(_ context.Context, playerID, _ int) ([]models.XPTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.XPTransaction
	for _, t := range r.txs {
		if t.PlayerID == playerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeExperienceRepo) UpdateStreak(_ context.Context, _ repositories.SQLExecutor, playerID, current, longest int, lastActiveOn time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[playerID]
	if !ok {
		return repositories.ErrExperienceNotFound
	}
	rec.CurrentStreak = current
	rec.LongestStreak = longest
	rec.LastActiveOn = &lastActiveOn
	return nil
}

func (r *fakeExperienceRepo) ListStaleStreaks(_ context.Context, activeBefore time.Time) ([]models.PlayerExperience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PlayerExperience
	for _, rec := range r.records {
		if rec.CurrentStreak > 0 && (rec.LastActiveOn == nil || rec.LastActiveOn.Before(activeBefore)) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *fakeExperienceRepo) ResetStreak(_ context.Context, playerID int, activeBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[playerID]
	if !ok || rec.CurrentStreak == 0 {
		return false, nil
	}
	if rec.LastActiveOn != nil && !rec.LastActiveOn.Before(activeBefore) {
		return false, nil
	}
	rec.CurrentStreak = 0
	return true, nil
}

func (r *fakeExperienceRepo) set(rec models.PlayerExperience) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.PlayerID] = &rec
}

type fakeAchievementRepo struct {
	mu       sync.Mutex
	stats    map[int]*models.PlayerStats
	unlocked map[int]map[string]time.Time
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{
		stats:    make(map[int]*models.PlayerStats),
		unlocked: make(map[int]map[string]time.Time),
	}
}

func (r *fakeAchievementRepo) IncrementStats(_ context.Context, playerID, played, won int) (*models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stats[playerID]
	if !ok {
		st = &models.PlayerStats{PlayerID: playerID}
		r.stats[playerID] = st
	}
	st.MatchesPlayed += played
	st.MatchesWon += won
	cp := *st
	return &cp, nil
}

func (r *fakeAchievementRepo) GetStats(_ context.Context, playerID int) (*models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stats[playerID]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.PlayerStats{PlayerID: playerID}, nil
}

func (r *fakeAchievementRepo) Unlock(_ context.Context, playerID int, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unlocked[playerID] == nil {
		r.unlocked[playerID] = make(map[string]time.Time)
	}
	if _, ok := r.unlocked[playerID][code]; ok {
		return false, nil
	}
	r.unlocked[playerID][code] = time.Now()
	return true, nil
}

func (r *fakeAchievementRepo) ListUnlocked(_ context.Context, playerID int) (map[string]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]time.Time)
	for k, v := range r.unlocked[playerID] {
		out[k] = v
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []*models.Notification
	fail  error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	n.ID = len(r.items) + 1
	n.CreatedAt = time.Now()
	r.items = append(r.items, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID int, unreadOnly bool, _ int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Notification, 0)
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for _, n := range r.items {
		if n.UserID == userID && n.ReadAt == nil {
			c++
		}
	}
	return c, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	now := time.Now()
	for _, n := range r.items {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			c++
		}
	}
	return c, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendNotificationEmail(to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

var errStorage = errors.New("connection reset by peer")
