package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusworks/grievance-api/internal/middleware"
	"github.com/campusworks/grievance-api/internal/models"
	"github.com/campusworks/grievance-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext maps JWT claims onto the core's actor identity.
func actorFromContext(c *gin.Context) *service.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return &service.Actor{ID: claims.UserID, Role: claims.Role}
}
