package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prospect-portal-api/internal/dto"
	"github.com/noah-isme/prospect-portal-api/internal/middleware"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

func actorFromContext(c *gin.Context) *models.Actor {
	return middleware.ActorFromContext(c)
}

// parseProspectQuery reads status, sort and limit from the query string.
func parseProspectQuery(c *gin.Context, all bool) (dto.ProspectQuery, error) {
	query := dto.ProspectQuery{
		Status: models.ProspectStatus(c.Query("status")),
		Sort:   models.ProspectSort(c.Query("sort")),
		All:    all,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer")
		}
		query.Limit = limit
	}
	return query, nil
}
