package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docseal/internal/infra/ws"
)

// handleNotificationSocket upgrades the connection, replays the undelivered
// backlog, and then keeps the socket registered for live pushes. Everything
// replayed or pushed on a live socket counts as delivered; read state is
// untouched.
func (s *Server) handleNotificationSocket(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return
	}
	raw, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	if s.undelivered != nil {
		backlog, err := s.undelivered.ListUndelivered(c.Request.Context(), session.AccountID)
		if err != nil {
			s.log.Error("list undelivered", zap.Int64("account_id", session.AccountID), zap.Error(err))
			return
		}
		for _, notification := range backlog {
			if err := conn.Send(notification); err != nil {
				return
			}
		}
	}
	if err := s.notifier.ReconcileOnConnect(c.Request.Context(), session.AccountID); err != nil {
		s.log.Error("reconcile deliveries", zap.Int64("account_id", session.AccountID), zap.Error(err))
		return
	}

	s.registry.Register(session.AccountID, conn)
	defer s.registry.Unregister(session.AccountID, conn)
	conn.ReadUntilClosed()
}
