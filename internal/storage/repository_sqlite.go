package storage

import (
	"errors"
	"time"

	"github.com/ericogr/cardduel/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no duel has the requested code.
var ErrNotFound = errors.New("record not found")

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveDuel(d *game.DuelRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "round", "phase", "status", "winner", "snapshot"}),
	}).Create(d).Error
}

func (r *sqliteRepository) GetDuelByCode(code string) (*game.DuelRecord, error) {
	var d game.DuelRecord
	if err := r.db.Where("code = ?", code).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *sqliteRepository) ListRecentDuels(limit int) ([]game.DuelRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var duels []game.DuelRecord
	err := r.db.Omit("snapshot").Order("updated_at desc").Limit(limit).Find(&duels).Error
	return duels, err
}

func (r *sqliteRepository) FindStaleDuels(before time.Time) ([]game.DuelRecord, error) {
	var duels []game.DuelRecord
	err := r.db.Omit("snapshot").
		Where("status = ? AND updated_at <= ?", game.StatusInProgress, before).
		Find(&duels).Error
	return duels, err
}

func (r *sqliteRepository) MarkFinished(code string) error {
	return r.db.Model(&game.DuelRecord{}).
		Where("code = ? AND status = ?", code, game.StatusInProgress).
		Updates(map[string]interface{}{"status": game.StatusFinished, "winner": ""}).Error
}

func (r *sqliteRepository) LogAIDecision(rec *game.AIDecisionRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) ListAIDecisions(code string) ([]game.AIDecisionRecord, error) {
	var recs []game.AIDecisionRecord
	err := r.db.Where("duel_code = ?", code).Order("id asc").Find(&recs).Error
	return recs, err
}
