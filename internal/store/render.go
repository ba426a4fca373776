package store

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/errors"
)

// RenderStore defines operations for archived renders.
type RenderStore interface {
	Create(rec *model.RenderRecord) error
	GetByID(id string) (*model.RenderRecord, error)
	// List returns one page of records, newest first, without payload and Markdown.
	// An empty flavorID lists every flavor.
	List(flavorID string, page, pageSize int) ([]model.RenderRecord, int64, error)
	Delete(id string) error
	// DeleteOlderThan removes records created more than days ago
	DeleteOlderThan(days int) (int64, error)
	Count() (int64, error)
	CountByFlavor() (map[string]int64, error)
}

const (
	// DefaultPageSize is used when List gets a non-positive page size
	DefaultPageSize = 20
	// MaxPageSize caps List page sizes
	MaxPageSize = 100
)

// renderStore implements RenderStore using GORM.
type renderStore struct {
	db *gorm.DB
}

func newRenderStore(db *gorm.DB) RenderStore {
	return &renderStore{db: db}
}

func (s *renderStore) Create(rec *model.RenderRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to archive render", err)
	}
	return nil
}

func (s *renderStore) GetByID(id string) (*model.RenderRecord, error) {
	var rec model.RenderRecord
	err := s.db.First(&rec, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRenderNotFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to get render", err)
	}
	return &rec, nil
}

func (s *renderStore) List(flavorID string, page, pageSize int) ([]model.RenderRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := s.db.Model(&model.RenderRecord{})
	if flavorID != "" {
		query = query.Where("flavor_id = ?", flavorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeDBQuery, "failed to count renders", err)
	}

	var records []model.RenderRecord
	err := query.Omit("payload", "markdown", "sections").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeDBQuery, "failed to list renders", err)
	}
	return records, total, nil
}

func (s *renderStore) Delete(id string) error {
	result := s.db.Delete(&model.RenderRecord{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to delete render", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrRenderNotFound(id)
	}
	return nil
}

func (s *renderStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.Where("created_at < ?", cutoff).Delete(&model.RenderRecord{})
	if result.Error != nil {
		return 0, errors.Wrap(errors.ErrCodeDBQuery, "failed to purge renders", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *renderStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.RenderRecord{}).Count(&count).Error
	return count, err
}

func (s *renderStore) CountByFlavor() (map[string]int64, error) {
	var rows []struct {
		FlavorID string
		Count    int64
	}
	err := s.db.Model(&model.RenderRecord{}).
		Select("flavor_id, COUNT(*) AS count").
		Group("flavor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to count renders by flavor", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.FlavorID] = row.Count
	}
	return counts, nil
}

// NewRenderRecord builds an archive record from a rendered document and its raw payload
func NewRenderRecord(doc *report.Document, payload []byte, source model.RenderSource) (*model.RenderRecord, error) {
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode rendered sections", err)
	}

	keys := make(model.StringArray, 0, doc.SectionCount())
	for _, s := range doc.Sections {
		keys = append(keys, s.Key)
		for _, sub := range s.Subsections {
			keys = append(keys, sub.Key)
		}
	}

	return &model.RenderRecord{
		ID:           doc.ID,
		FlavorID:     doc.FlavorID,
		Title:        doc.Title,
		Source:       source,
		Numbers:      model.StringMap(doc.Numbers),
		SectionKeys:  keys,
		SectionCount: doc.SectionCount(),
		Sections:     string(sections),
		Markdown:     doc.Markdown(),
		Payload:      string(payload),
		PayloadBytes: len(payload),
		GeneratedAt:  doc.GeneratedAt,
	}, nil
}

// DocumentFromRecord rebuilds the rendered document of an archived record
func DocumentFromRecord(rec *model.RenderRecord) (*report.Document, error) {
	doc := &report.Document{
		ID:          rec.ID,
		FlavorID:    rec.FlavorID,
		Title:       rec.Title,
		Numbers:     report.SectionNumbers(rec.Numbers),
		GeneratedAt: rec.GeneratedAt,
	}
	if rec.Sections != "" {
		if err := json.Unmarshal([]byte(rec.Sections), &doc.Sections); err != nil {
			return nil, errors.ErrInternal("failed to decode archived sections", err)
		}
	}
	return doc, nil
}
