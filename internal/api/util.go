package api

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/phase"
	"github.com/ericogr/cardduel/internal/service"

	"github.com/gin-gonic/gin"
)

var duelCodeRegex = regexp.MustCompile("^[A-Z0-9]{8}$")

// duelCode reads and validates the :code path parameter. It writes the 400
// response itself when the code is malformed.
func duelCode(c *gin.Context) (string, bool) {
	code := service.NormalizeCode(c.Param("code"))
	if !duelCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidDuelCode})
		return "", false
	}
	return code, true
}

// statusForError maps engine and service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrDuelNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownCharacter), errors.Is(err, service.ErrUnknownDeck):
		return http.StatusBadRequest
	case errors.Is(err, phase.ErrDuelFinished),
		errors.Is(err, phase.ErrNotYourTurn),
		errors.Is(err, phase.ErrWrongPhase),
		errors.Is(err, phase.ErrAlreadyDone),
		errors.Is(err, phase.ErrNotResponder):
		return http.StatusConflict
	case errors.Is(err, game.ErrNoActionPoints),
		errors.Is(err, game.ErrInvalidPosition),
		errors.Is(err, game.ErrPositionTaken),
		errors.Is(err, game.ErrCardNotInHand),
		errors.Is(err, game.ErrNotEnoughEnergy),
		errors.Is(err, game.ErrNotAModifier),
		errors.Is(err, game.ErrCannotBeCore),
		errors.Is(err, game.ErrDuplicateHandRef),
		errors.Is(err, phase.ErrCannotEquip):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err in the standard error shape. Client errors carry
// the error text as details; server errors do not.
func abortWithError(c *gin.Context, err error, msg string) {
	code := statusForError(err)
	switch code {
	case http.StatusNotFound:
		c.JSON(code, gin.H{constants.JSONKeyError: constants.ErrDuelNotFound})
	case http.StatusConflict:
		if errors.Is(err, phase.ErrDuelFinished) {
			msg = constants.ErrDuelFinished
		}
		c.JSON(code, gin.H{constants.JSONKeyError: msg, constants.JSONKeyDetails: err.Error()})
	case http.StatusInternalServerError:
		c.JSON(code, gin.H{constants.JSONKeyError: msg})
	default:
		c.JSON(code, gin.H{constants.JSONKeyError: msg, constants.JSONKeyDetails: err.Error()})
	}
}
