package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

// yearQuery reads ?annee= or its alias ?year=. Blank or 0 means no filter.
func yearQuery(c *gin.Context) (*int, error) {
	raw := strings.TrimSpace(c.Query("annee"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("year"))
	}
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "annee must be an integer")
	}
	if year == 0 {
		return nil, nil
	}
	return &year, nil
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
