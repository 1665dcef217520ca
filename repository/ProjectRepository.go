package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sitetrack/models"
)

// ProjectStore is the persistence port for whole project documents. Every
// core mutation produces a new document and hands it to Save. The store is
// the "commit" side of the read-modify-write cycle, and the last write wins:
// there is no optimistic concurrency on the document row.
type ProjectStore interface {
	Get(ctx context.Context, id string) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, p models.Project) error
	Save(ctx context.Context, p models.Project) error
	Delete(ctx context.Context, id string) error
	LogActivity(ctx context.Context, projectID, action, entity, entityID, performedBy string)
}

const projectCacheTTL = 5 * time.Minute

// ProjectRepository stores project documents in a jsonb column, with an
// optional Redis read-through cache in front. A nil cache client disables
// caching entirely.
type ProjectRepository struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewProjectRepository(db *gorm.DB, cache *redis.Client) *ProjectRepository {
	return &ProjectRepository{db: db, cache: cache}
}

func projectCacheKey(id string) string {
	return "project:" + id
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (models.Project, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, projectCacheKey(id)).Bytes(); err == nil {
			var cached models.Project
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			// Unreadable cache entries are dropped and reloaded from the DB.
			r.cache.Del(ctx, projectCacheKey(id))
		}
	}

	var record models.ProjectRecordGorm
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, models.ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("fetch project %s: %w", id, err)
	}

	r.fillCache(ctx, record.Document)
	return record.Document, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	var records []models.ProjectRecordGorm
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]models.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, rec.Document)
	}
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p models.Project) error {
	record := models.ProjectRecordGorm{
		ID:       p.ID,
		Name:     p.Name,
		Status:   p.Status,
		Document: p,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("create project %s: %w", p.ID, err)
	}
	r.fillCache(ctx, p)
	return nil
}

// Save replaces the stored document in full and refreshes the cache. This is
// the onProjectUpdate collaborator every core mutation hands its result to.
func (r *ProjectRepository) Save(ctx context.Context, p models.Project) error {
	updates := map[string]any{
		"name":     p.Name,
		"status":   p.Status,
		"document": p,
	}
	result := r.db.WithContext(ctx).Model(&models.ProjectRecordGorm{}).
		Where("id = ?", p.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("save project %s: %w", p.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}

	if r.cache != nil {
		// Invalidate rather than refill: the next read repopulates from the
		// committed row, so a failed write can never pin a stale document.
		r.cache.Del(ctx, projectCacheKey(p.ID))
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectRecordGorm{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete project %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	if r.cache != nil {
		r.cache.Del(ctx, projectCacheKey(id))
	}
	return nil
}

// LogActivity records an audit row. Best effort: an audit failure never
// blocks the mutation it describes.
func (r *ProjectRepository) LogActivity(ctx context.Context, projectID, action, entity, entityID, performedBy string) {
	entry := models.ActivityLogGorm{
		ProjectID:   projectID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		PerformedBy: performedBy,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Failed to write activity log for project %s: %v", projectID, err)
	}
}

// ActivityLogs lists the audit trail for a project, newest first.
func (r *ProjectRepository) ActivityLogs(ctx context.Context, projectID string, limit int) ([]models.ActivityLogGorm, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.ActivityLogGorm
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list activity logs for %s: %w", projectID, err)
	}
	return logs, nil
}

func (r *ProjectRepository) fillCache(ctx context.Context, p models.Project) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, projectCacheKey(p.ID), data, projectCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache project %s: %v", p.ID, err)
	}
}
