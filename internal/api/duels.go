package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/service"

	"github.com/gin-gonic/gin"
)

type CreateDuelPayload struct {
	PlayerName        string `json:"player_name"`
	PlayerCharacter   string `json:"player_character" binding:"required"`
	OpponentCharacter string `json:"opponent_character"`
	PlayerDeck        string `json:"player_deck"`
	OpponentDeck      string `json:"opponent_deck"`
}

// CreateDuel starts a duel against an AI opponent.
func (h *DuelHandler) CreateDuel(c *gin.Context) {
	var req CreateDuelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	code, err := h.svc.CreateDuel(c.Request.Context(), service.CreateDuelRequest{
		PlayerName:        req.PlayerName,
		PlayerCharacter:   req.PlayerCharacter,
		OpponentCharacter: req.OpponentCharacter,
		PlayerDeck:        req.PlayerDeck,
		OpponentDeck:      req.OpponentDeck,
	})
	if err != nil {
		if statusForError(err) == http.StatusBadRequest {
			msg := constants.ErrInvalidRequest
			if errors.Is(err, service.ErrUnknownCharacter) {
				msg = constants.ErrUnknownCharacter
			}
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: msg, constants.JSONKeyDetails: err.Error()})
			return
		}
		logging.Error("create duel failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateDuel})
		return
	}
	state, err := h.svc.Snapshot(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeDuel})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":  code,
		"state": state,
	})
}

// ListDuels returns recently played duels, newest first.
func (h *DuelHandler) ListDuels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	duels, err := h.svc.ListDuels(limit)
	if err != nil {
		logging.Error("list duels failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchDuels})
		return
	}
	c.JSON(http.StatusOK, duels)
}

// GetDuel returns the full state of a duel.
func (h *DuelHandler) GetDuel(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	state, err := h.svc.Snapshot(code)
	if err != nil {
		abortWithError(c, err, constants.ErrFailedEncodeDuel)
		return
	}
	c.Data(http.StatusOK, constants.ContentTypeJSON, state)
}

// ListAIDecisions returns the opponent's decision log for a duel.
func (h *DuelHandler) ListAIDecisions(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	recs, err := h.svc.AIDecisions(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchDuels})
		return
	}
	c.JSON(http.StatusOK, recs)
}

type EquipPayload struct {
	Card string    `json:"card" binding:"required"`
	Slot game.Slot `json:"slot" binding:"required"`
}

func (h *DuelHandler) Equip(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	var req EquipPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	h.command(c, code, h.svc.Equip(code, req.Card, req.Slot), nil)
}

func (h *DuelHandler) FinishEquip(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	h.command(c, code, h.svc.FinishEquip(code), nil)
}

func (h *DuelHandler) Place(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	var req service.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	stack, err := h.svc.Place(code, req)
	h.command(c, code, err, gin.H{"stack": stack})
}

func (h *DuelHandler) Pass(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	h.command(c, code, h.svc.Pass(code), nil)
}

type DefendPayload struct {
	Card string `json:"card" binding:"required"`
}

func (h *DuelHandler) DefendThreat(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	var req DefendPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	h.command(c, code, h.svc.DefendThreat(code, req.Card), nil)
}

func (h *DuelHandler) SkipThreat(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	h.command(c, code, h.svc.SkipThreat(code), nil)
}

// command answers a player command with the resulting state, or maps err.
func (h *DuelHandler) command(c *gin.Context, code string, err error, extra gin.H) {
	if err != nil {
		abortWithError(c, err, constants.ErrActionRejected)
		return
	}
	state, err := h.svc.Snapshot(code)
	if err != nil {
		abortWithError(c, err, constants.ErrFailedEncodeDuel)
		return
	}
	resp := gin.H{"state": json.RawMessage(state)}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}
