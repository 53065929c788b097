package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pmelhus/homequest/internal/economy"
	"github.com/pmelhus/homequest/internal/handler"
	"github.com/pmelhus/homequest/internal/leaderboard"
	"github.com/pmelhus/homequest/internal/middleware"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/push"
	"github.com/pmelhus/homequest/internal/store"
	"github.com/pmelhus/homequest/internal/task"
	ws "github.com/pmelhus/homequest/internal/websocket"
)

// Config carries the optional pieces of the server: web push keys and the
// shared secret guarding the /internal maintenance endpoints.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	CronSecret      string
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	taskEngine    *task.Engine
	economySvc    *economy.Service
	boardSvc      *leaderboard.Service
	userH         *handler.UserHandler
	taskH         *handler.TaskHandler
	rewardH       *handler.RewardHandler
	consequenceH  *handler.ConsequenceHandler
	activityH     *handler.ActivityHandler
	notificationH *handler.NotificationHandler
	leaderboardH  *handler.LeaderboardHandler
	pushH         *handler.PushHandler
	cronSecret    string
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	consequenceStore := store.NewConsequenceStore(db)
	activityStore := store.NewActivityStore(db)
	notificationStore := store.NewNotificationStore(db)
	pushStore := store.NewPushStore(db)

	var pushSvc *push.Service
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	}

	notifier := notify.New(hub, pushSvc, pushStore, logger.With("component", "notify"))

	taskEngine := task.NewEngine(db, notifier, logger.With("component", "task"))
	economySvc := economy.NewService(db, notifier, logger.With("component", "economy"))
	boardSvc := leaderboard.NewService(db, notifier, logger.With("component", "leaderboard"))

	return &Server{
		db:            db,
		hub:           hub,
		taskEngine:    taskEngine,
		economySvc:    economySvc,
		boardSvc:      boardSvc,
		userH:         handler.NewUserHandler(userStore, hub),
		taskH:         handler.NewTaskHandler(taskEngine, taskStore, hub),
		rewardH:       handler.NewRewardHandler(rewardStore, economySvc, hub),
		consequenceH:  handler.NewConsequenceHandler(consequenceStore, economySvc, hub),
		activityH:     handler.NewActivityHandler(activityStore, economySvc, hub),
		notificationH: handler.NewNotificationHandler(notificationStore),
		leaderboardH:  handler.NewLeaderboardHandler(boardSvc, hub),
		pushH:         handler.NewPushHandler(pushStore, pushSvc),
		cronSecret:    cfg.CronSecret,
		logger:        logger,
	}
}

// TaskEngine exposes the task engine for the scheduler.
func (s *Server) TaskEngine() *task.Engine {
	return s.taskEngine
}

// Leaderboard exposes the leaderboard service for the scheduler.
func (s *Server) Leaderboard() *leaderboard.Service {
	return s.boardSvc
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Users
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("PUT /api/users/{id}", s.userH.Update)
	mux.HandleFunc("POST /api/users/{id}/password", s.userH.SetPassword)
	mux.HandleFunc("DELETE /api/users/{id}/password", s.userH.ClearPassword)
	mux.HandleFunc("POST /api/users/{id}/password/verify", s.userH.VerifyPassword)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/claim", s.taskH.Claim)
	mux.HandleFunc("POST /api/tasks/{id}/progress", s.taskH.Progress)
	mux.HandleFunc("POST /api/tasks/{id}/approve", s.taskH.Approve)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("GET /api/rewards/{id}", s.rewardH.Get)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/purchase", s.rewardH.Purchase)

	// Consequences and penalties
	mux.HandleFunc("GET /api/consequences", s.consequenceH.List)
	mux.HandleFunc("POST /api/consequences", s.consequenceH.Create)
	mux.HandleFunc("PUT /api/consequences/{id}", s.consequenceH.Update)
	mux.HandleFunc("DELETE /api/consequences/{id}", s.consequenceH.Delete)
	mux.HandleFunc("POST /api/consequences/{id}/apply", s.consequenceH.Apply)
	mux.HandleFunc("POST /api/penalties", s.consequenceH.ApplyPenalty)

	// Activity feed and reward suggestions
	mux.HandleFunc("GET /api/activities", s.activityH.List)
	mux.HandleFunc("GET /api/suggestions", s.activityH.ListSuggestions)
	mux.HandleFunc("POST /api/suggestions", s.activityH.SuggestReward)
	mux.HandleFunc("POST /api/suggestions/{id}/approve", s.activityH.ApproveSuggestion)
	mux.HandleFunc("POST /api/suggestions/{id}/reject", s.activityH.RejectSuggestion)

	// Notifications
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("GET /api/notifications/unread-count", s.notificationH.UnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Delete)

	// Leaderboard
	mux.HandleFunc("GET /api/leaderboard", s.leaderboardH.Standings)
	mux.HandleFunc("GET /api/leaderboard/history", s.leaderboardH.History)

	// Web push
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDPublicKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// Maintenance endpoints, normally hit by the in-process scheduler but
	// exposed for external cron with a shared secret.
	internalMux := http.NewServeMux()
	internalMux.HandleFunc("POST /internal/reset-recurring", s.taskH.ResetRecurring)
	internalMux.HandleFunc("POST /internal/reset-leaderboard", s.leaderboardH.ResetPeriod)
	cronAuth := middleware.RequireCronSecret(s.cronSecret)
	mux.Handle("/internal/", cronAuth(internalMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
