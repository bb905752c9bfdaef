// Package store provides the GORM-backed session and chat message
// store on SQLite.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domainchat "github.com/flockcast/engage/internal/domain/chat"
	"github.com/flockcast/engage/internal/domain/session"
)

// Store implements registry.SessionStore and chat.MessageStore.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at the given DSN and migrates
// the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.AutoMigrate(&sessionRecord{}, &messageRecord{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}
	return &Store{db: db}, nil
}

// FindLive returns all sessions currently marked live.
func (s *Store) FindLive(ctx context.Context) ([]*session.Session, error) {
	var recs []sessionRecord
	err := s.db.WithContext(ctx).
		Where("state = ?", int(session.StateLive)).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query live sessions")
	}
	return toSessions(recs), nil
}

// FindByID returns the session or nil when unknown.
func (s *Store) FindByID(ctx context.Context, id string) (*session.Session, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up session %s", id)
	}
	return rec.toDomain(), nil
}

// FindScheduledAfter returns scheduled sessions starting after the
// given time, ordered by scheduled time ascending.
func (s *Store) FindScheduledAfter(ctx context.Context, after time.Time) ([]*session.Session, error) {
	var recs []sessionRecord
	err := s.db.WithContext(ctx).
		Where("state = ? AND scheduled_time > ?", int(session.StateScheduled), after).
		Order("scheduled_time ASC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query scheduled sessions")
	}
	return toSessions(recs), nil
}

// FindRecorded returns ended sessions with a recording, ordered by end
// time descending.
func (s *Store) FindRecorded(ctx context.Context) ([]*session.Session, error) {
	var recs []sessionRecord
	err := s.db.WithContext(ctx).
		Where("state = ? AND has_recording = ?", int(session.StateEnded), true).
		Order("end_time DESC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recordings")
	}
	return toSessions(recs), nil
}

// SaveSession upserts a session document. Only the administrative
// surface writes sessions; the engagement core just reads them.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	rec := toSessionRecord(sess)
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return errors.Wrapf(err, "failed to save session %s", sess.ID)
	}
	return nil
}

// SaveMessage persists a chat message.
func (s *Store) SaveMessage(ctx context.Context, msg *domainchat.Message) error {
	rec := toMessageRecord(msg)
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrapf(err, "failed to save chat message %s", msg.ID)
	}
	return nil
}

// Messages returns a session's persisted messages in sequence order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]*domainchat.Message, error) {
	var recs []messageRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query messages for session %s", sessionID)
	}
	out := make([]*domainchat.Message, len(recs))
	for i := range recs {
		out[i] = recs[i].toDomain()
	}
	return out, nil
}
