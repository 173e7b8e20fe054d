package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docbrain/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create chunks batch failed: %w", err)
	}
	return nil
}

// All returns every stored chunk, ordered by source and position.
func (r *ChunkRepository) All() ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.Order("source, seq").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	return chunks, nil
}

// DistinctSources returns the sorted set of source filenames present in the
// store. This is the listing contract: derived from chunk metadata, never
// tracked separately.
func (r *ChunkRepository) DistinctSources() ([]string, error) {
	var sources []string
	err := r.db.Model(&model.Chunk{}).
		Distinct("source").
		Order("source").
		Pluck("source", &sources).Error
	if err != nil {
		return nil, fmt.Errorf("list distinct sources failed: %w", err)
	}
	return sources, nil
}

func (r *ChunkRepository) CountBySource(source string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Where("source = ?", source).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks by source failed: %w", err)
	}
	return count, nil
}

func (r *ChunkRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks failed: %w", err)
	}
	return count, nil
}

func (r *ChunkRepository) DeleteBySource(source string) error {
	if err := r.db.Where("source = ?", source).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by source failed: %w", err)
	}
	return nil
}
