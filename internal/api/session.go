package api

import (
	"net/http"

	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

// currentSession returns the caller's session, aborting the request when there is none.
func currentSession(c *gin.Context, sessions *session.Manager) (*session.Session, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return nil, false
	}
	s, err := sessions.Acquire(userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}
