package repository

import (
	"context"
	"errors"
	"time"

	"community_chat_service/internal/chat/domain"

	"gorm.io/gorm"
)

// EventRecord row of the community events table
type EventRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	Title       string `gorm:"size:200;not null"`
	OrganizerID string `gorm:"size:64;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName gorm table name
func (EventRecord) TableName() string { return "events" }

// EventRepository definition read access to community events
type EventRepository interface {
	AutoMigrate() error
	FindByID(ctx context.Context, eventID string) (*domain.EventInfo, error)
	Create(ctx context.Context, event *domain.EventInfo) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository create EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// AutoMigrate 只在本地開發時建立 events 表
func (r *eventRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&EventRecord{})
}

func (r *eventRepository) FindByID(ctx context.Context, eventID string) (*domain.EventInfo, error) {
	var rec EventRecord
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &domain.EventInfo{ID: rec.ID, Title: rec.Title, OrganizerID: rec.OrganizerID}, nil
}

func (r *eventRepository) Create(ctx context.Context, event *domain.EventInfo) error {
	rec := EventRecord{ID: event.ID, Title: event.Title, OrganizerID: event.OrganizerID}
	return r.db.WithContext(ctx).Create(&rec).Error
}
