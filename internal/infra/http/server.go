// Package http exposes the issuance, verification and lifecycle API over
// gin. Handlers translate between the wire and the usecases; no lifecycle
// rule lives here.
package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docseal/internal/config"
	"docseal/internal/domain"
	"docseal/internal/infra/auth"
	"docseal/internal/infra/push"
	"docseal/internal/infra/ratelimit"
	"docseal/internal/usecase"
)

// UndeliveredLister returns the notification backlog replayed to a recipient
// right after they connect.
type UndeliveredLister interface {
	ListUndelivered(ctx context.Context, accountID int64) ([]domain.Notification, error)
}

// DeletionAuditLister exposes the purge trail, newest first.
type DeletionAuditLister interface {
	List(ctx context.Context, limit int) ([]domain.DeletionAudit, error)
}

type Server struct {
	cfg config.Config
	r   *gin.Engine
	log *zap.Logger

	login         *usecase.Login
	issue         *usecase.IssueDocument
	verify        *usecase.VerifyDocument
	softDelete    *usecase.SoftDeleteDocument
	recoverBatch  *usecase.RecoverDocuments
	checkConflict *usecase.CheckConflict
	edit          *usecase.EditDocument
	notifier      *usecase.Notifier

	documents usecase.DocumentRepository
	accounts  usecase.AccountRepository
	owners    usecase.OwnerRepository
	artifacts usecase.ArtifactStore
	codec     usecase.ReferenceCodec

	sessions    *auth.Sessions
	registry    *push.Registry
	undelivered UndeliveredLister
	auditLog    DeletionAuditLister

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type ServerDeps struct {
	Login         *usecase.Login
	Issue         *usecase.IssueDocument
	Verify        *usecase.VerifyDocument
	SoftDelete    *usecase.SoftDeleteDocument
	Recover       *usecase.RecoverDocuments
	CheckConflict *usecase.CheckConflict
	Edit          *usecase.EditDocument
	Notifier      *usecase.Notifier

	Documents usecase.DocumentRepository
	Accounts  usecase.AccountRepository
	Owners    usecase.OwnerRepository
	Artifacts usecase.ArtifactStore
	Codec     usecase.ReferenceCodec

	Sessions    *auth.Sessions
	Registry    *push.Registry
	Undelivered UndeliveredLister
	AuditLog    DeletionAuditLister

	RateLimiter domain.RateLimiter

	Log *zap.Logger
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:           cfg,
		r:             r,
		log:           log,
		login:         deps.Login,
		issue:         deps.Issue,
		verify:        deps.Verify,
		softDelete:    deps.SoftDelete,
		recoverBatch:  deps.Recover,
		checkConflict: deps.CheckConflict,
		edit:          deps.Edit,
		notifier:      deps.Notifier,
		documents:     deps.Documents,
		accounts:      deps.Accounts,
		owners:        deps.Owners,
		artifacts:     deps.Artifacts,
		codec:         deps.Codec,
		sessions:      deps.Sessions,
		registry:      deps.Registry,
		undelivered:   deps.Undelivered,
		auditLog:      deps.AuditLog,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public surface: verifiers hold a QR token, nothing else.
	s.r.POST("/verify", s.handleVerify)

	s.r.POST("/login", s.handleLogin)

	authed := s.r.Group("/", s.requireSession())
	{
		authed.POST("/documents", s.handleIssue)
		authed.GET("/documents", s.handleListDocuments)
		authed.GET("/documents/deleted", s.handleListDeleted)
		authed.GET("/documents/:token/file", s.handleDownload)
		authed.PATCH("/documents/:token", s.handleEdit)
		authed.DELETE("/documents/:token", s.handleSoftDelete)
		authed.POST("/documents/:token/check-conflict", s.handleCheckConflict)
		authed.POST("/documents/recover", s.handleRecover)

		authed.GET("/owners/:ic", s.handleOwnerLookup)

		authed.GET("/notifications", s.handleNotificationFeed)
		authed.POST("/notifications/read-all", s.handleMarkAllRead)
		authed.POST("/notifications/:id/read", s.handleMarkRead)

		authed.GET("/audit/deletions", s.handleDeletionAudit)

		authed.GET("/ws", s.handleNotificationSocket)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, 404, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	return s.r
}
