package api

import (
	"net/http"
	"strings"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/effects"

	"github.com/gin-gonic/gin"
)

type ParseEffectPayload struct {
	Text string `json:"text"`
}

// ParseEffect runs the effect text parser so card authors can see which
// parts of a card's text resolve mechanically.
func ParseEffect(c *gin.Context) {
	var req ParseEffectPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrEffectTextRequired})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"parsed":    effects.Parse(req.Text),
		"parseable":  effects.IsParseable(req.Text),
	})
}
