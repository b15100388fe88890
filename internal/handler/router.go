package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bisoye/docvault/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger          *slog.Logger
	RateLimiter     *middleware.RateLimiter
	MetricsRecorder middleware.HTTPMetricsRecorder

	// サービス
	RoleService     RoleServiceInterface
	UserService     UserServiceInterface
	DocumentService DocumentServiceInterface

	// 監視用エンドポイント
	MetricsHandler http.Handler
	HealthChecker  func() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → RateLimit(General)
//
// /healthと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	roleHandler := NewRoleHandler(deps.RoleService)
	userHandler := NewUserHandler(deps.UserService)
	documentHandler := NewDocumentHandler(deps.DocumentService)

	// --- 監視用ルート ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker(); err != nil {
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)、書き込み系はMutationを追加
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		mutation := func(r chi.Router) chi.Router {
			if deps.RateLimiter != nil {
				return r.With(deps.RateLimiter.MutationMiddleware())
			}
			return r
		}

		// ロール管理
		r.Route("/api/roles", func(r chi.Router) {
			mutation(r).Post("/", roleHandler.CreateRole)
			r.Get("/", roleHandler.ListRoles)
			mutation(r).Delete("/", roleHandler.DropRoles)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			mutation(r).Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.ListUsers)
			r.Get("/search", userHandler.GetUser)
			mutation(r).Delete("/", userHandler.DropUsers)
		})

		// ドキュメント管理
		r.Route("/api/documents", func(r chi.Router) {
			mutation(r).Post("/", documentHandler.CreateDocument)
			r.Get("/", documentHandler.ListDocuments)
			r.Get("/role/{role}", documentHandler.ListDocumentsByRole)
			r.Get("/date/{date}", documentHandler.ListDocumentsByDate)
			mutation(r).Delete("/", documentHandler.DropDocuments)
		})
	})

	return r
}
