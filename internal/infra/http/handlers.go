package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docseal/internal/domain"
	"docseal/internal/usecase"
)

const issueDateLayout = "2006-01-02"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}

// writeError maps domain errors onto the wire. An undecodable token and a
// token for a purged record are indistinguishable on purpose.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, domain.ErrShadowConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Code:    "SOFT_DELETED_CONFLICT",
			Message: "a soft-deleted document occupies the target slot; resolve it explicitly",
			Status:  string(domain.ConflictSoftDeleted),
		})
	case errors.Is(err, domain.ErrConflict):
		writeErrorCode(c, http.StatusConflict, "CONFLICT", "an active document already occupies this slot")
	case errors.Is(err, domain.ErrForbidden):
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "not permitted")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

type accountResponse struct {
	AccountID  int64  `json:"account_id"`
	HolderName string `json:"holder_name"`
	Email      string `json:"email"`
	IsSuper    bool   `json:"is_super"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   accountResponse `json:"account"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	account, err := s.login.Execute(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	token, expiresAt, err := s.sessions.Issue(account)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account: accountResponse{
			AccountID:  account.AccountID,
			HolderName: account.HolderName,
			Email:      account.Email,
			IsSuper:    account.IsSuper,
		},
	})
}

type documentResponse struct {
	Token        string     `json:"token"`
	OwnerName    string     `json:"owner_name"`
	OwnerIC      string     `json:"owner_ic"`
	DocumentType string     `json:"document_type"`
	IssuerName   string     `json:"issuer_name"`
	IssueDate    string     `json:"issue_date"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (s *Server) documentResponse(record domain.DocumentRecord) (documentResponse, error) {
	token, err := s.codec.Encode(record.ID)
	if err != nil {
		return documentResponse{}, err
	}
	return documentResponse{
		Token:        token,
		OwnerName:    record.OwnerName,
		OwnerIC:      record.OwnerIC,
		DocumentType: record.DocumentType,
		IssuerName:   record.IssuerName,
		IssueDate:    record.IssueDate.Format(issueDateLayout),
		IsDeleted:    record.IsDeleted,
		DeletedAt:    record.DeletedAt,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}, nil
}

func (s *Server) handleIssue(c *gin.Context) {
	actor, ok := s.currentActor(c)
	if !ok {
		return
	}
	pdf, ok := readUpload(c)
	if !ok {
		return
	}
	issueDate, err := time.Parse(issueDateLayout, c.PostForm("issue_date"))
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ISSUE_DATE", "issue_date must be YYYY-MM-DD")
		return
	}
	req := usecase.IssueRequest{
		OwnerIC:      strings.TrimSpace(c.PostForm("owner_ic")),
		OwnerName:    strings.TrimSpace(c.PostForm("owner_name")),
		DocumentType: strings.TrimSpace(c.PostForm("document_type")),
		IssuerID:     actor.AccountID,
		IssueDate:    issueDate,
		PDF:          pdf,
	}
	if req.OwnerIC == "" || req.DocumentType == "" {
		writeErrorCode(c, http.StatusBadRequest, "MISSING_FIELDS", "owner_ic and document_type are required")
		return
	}
	result, err := s.issue.Execute(c.Request.Context(), actor, req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp, err := s.documentResponse(result.Record)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": resp, "token": result.Token})
}

func (s *Server) handleVerify(c *gin.Context) {
	if !s.enforceRateLimit(c) {
		return
	}
	token := strings.TrimSpace(c.PostForm("token"))
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}
	if token == "" {
		writeErrorCode(c, http.StatusBadRequest, "MISSING_TOKEN", "token is required")
		return
	}
	uploaded, ok := readUpload(c)
	if !ok {
		return
	}
	result, err := s.verify.Execute(c.Request.Context(), token, uploaded)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          result.Status,
		"hash_match":      result.HashMatch,
		"signature_valid": result.SignatureValid,
		"owner_name":      result.OwnerName,
		"issuer_name":     result.IssuerName,
		"issue_date":      result.IssueDate.Format(issueDateLayout),
	})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	s.listDocuments(c, false)
}

func (s *Server) handleListDeleted(c *gin.Context) {
	s.listDocuments(c, true)
}

func (s *Server) listDocuments(c *gin.Context, deleted bool) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	records, total, err := s.documents.List(c.Request.Context(), deleted, limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]documentResponse, 0, len(records))
	for _, record := range records {
		resp, err := s.documentResponse(record)
		if err != nil {
			s.writeError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"documents": out, "total": total})
}

func (s *Server) handleDownload(c *gin.Context) {
	id, err := s.codec.Decode(c.Param("token"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	record, err := s.documents.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	data, err := s.artifacts.LoadStamped(record.ArtifactPath)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="document.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

type editRequest struct {
	OwnerName    string `json:"owner_name"`
	OwnerIC      string `json:"owner_ic"`
	DocumentType string `json:"document_type"`
	IssuerID     *int64 `json:"issuer_id"`
	Resolution   string `json:"resolution"`
}

func (s *Server) handleEdit(c *gin.Context) {
	actor, ok := s.currentActor(c)
	if !ok {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	resolution := domain.ConflictResolution(req.Resolution)
	if resolution != domain.ResolutionNone && resolution != domain.ResolutionSoftDeleteConflict {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_RESOLUTION", "unknown conflict resolution")
		return
	}
	changes := domain.DocumentChanges{
		OwnerName:    req.OwnerName,
		OwnerIC:      req.OwnerIC,
		DocumentType: req.DocumentType,
		IssuerID:     req.IssuerID,
	}
	if err := s.edit.Execute(c.Request.Context(), c.Param("token"), actor, changes, resolution); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleSoftDelete(c *gin.Context) {
	actor, ok := s.currentActor(c)
	if !ok {
		return
	}
	if err := s.softDelete.Execute(c.Request.Context(), c.Param("token"), actor); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "soft_deleted"})
}

type recoverRequest struct {
	Tokens []string `json:"tokens"`
}

func (s *Server) handleRecover(c *gin.Context) {
	actor, ok := s.currentActor(c)
	if !ok {
		return
	}
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	recovered, err := s.recoverBatch.Execute(c.Request.Context(), req.Tokens, actor)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recovered": recovered})
}

type checkConflictRequest struct {
	OwnerIC      string `json:"owner_ic"`
	DocumentType string `json:"document_type"`
}

func (s *Server) handleCheckConflict(c *gin.Context) {
	var req checkConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	status, err := s.checkConflict.Execute(c.Request.Context(), c.Param("token"), req.OwnerIC, req.DocumentType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) handleOwnerLookup(c *gin.Context) {
	owner, err := s.owners.GetByIC(c.Request.Context(), c.Param("ic"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner_ic": owner.IC, "full_name": owner.FullName})
}

type feedItemResponse struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

func (s *Server) handleNotificationFeed(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return
	}
	items, err := s.notifier.Feed(c.Request.Context(), session.AccountID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]feedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, feedItemResponse{
			ID:        item.Notification.ID,
			Message:   item.Notification.Message,
			CreatedAt: item.Notification.CreatedAt,
			Read:      item.Read,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (s *Server) handleMarkRead(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return
	}
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ID", "notification id must be numeric")
		return
	}
	if err := s.notifier.MarkRead(c.Request.Context(), session.AccountID, notificationID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return
	}
	if err := s.notifier.MarkAllRead(c.Request.Context(), session.AccountID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

type auditEntryResponse struct {
	ID           int64     `json:"id"`
	OwnerIC      string    `json:"owner_ic"`
	DocumentType string    `json:"document_type"`
	IssueDate    string    `json:"issue_date"`
	DeletedBy    int64     `json:"deleted_by"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// handleDeletionAudit lists purge-trail rows, newest first. Superusers only;
// ordinary staff learn about purges through their notification feed.
func (s *Server) handleDeletionAudit(c *gin.Context) {
	actor, ok := s.currentActor(c)
	if !ok {
		return
	}
	if !actor.IsSuper {
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "not permitted")
		return
	}
	entries, err := s.auditLog.List(c.Request.Context(), intQuery(c, "limit", 50))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryResponse{
			ID:           entry.ID,
			OwnerIC:      entry.OwnerIC,
			DocumentType: entry.DocumentType,
			IssueDate:    entry.IssueDate.Format(issueDateLayout),
			DeletedBy:    entry.DeletedBy,
			DeletedAt:    entry.DeletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func readUpload(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "MISSING_FILE", "file upload is required")
		return nil, false
	}
	src, err := file.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_FILE", "cannot read upload")
		return nil, false
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil || len(data) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_FILE", "cannot read upload")
		return nil, false
	}
	return data, true
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
