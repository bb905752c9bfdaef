package store

import (
	"time"

	domainchat "github.com/flockcast/engage/internal/domain/chat"
	"github.com/flockcast/engage/internal/domain/session"
)

// sessionRecord is the GORM model for session documents.
type sessionRecord struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	State         int `gorm:"index"`
	ScheduledTime time.Time
	StartTime     *time.Time
	EndTime       *time.Time
	MediaURL      string
	MediaHD       string
	MediaSD       string
	HasRecording  bool
	UpdatedAt     time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

func (r *sessionRecord) toDomain() *session.Session {
	return &session.Session{
		ID:            r.ID,
		Title:         r.Title,
		State:         session.State(r.State),
		ScheduledTime: r.ScheduledTime,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Media: session.MediaRef{
			URL: r.MediaURL,
			HD:  r.MediaHD,
			SD:  r.MediaSD,
		},
		HasRecording: r.HasRecording,
	}
}

func toSessionRecord(s *session.Session) *sessionRecord {
	return &sessionRecord{
		ID:            s.ID,
		Title:         s.Title,
		State:         int(s.State),
		ScheduledTime: s.ScheduledTime,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		MediaURL:      s.Media.URL,
		MediaHD:       s.Media.HD,
		MediaSD:       s.Media.SD,
		HasRecording:  s.HasRecording,
	}
}

func toSessions(recs []sessionRecord) []*session.Session {
	out := make([]*session.Session, len(recs))
	for i := range recs {
		out[i] = recs[i].toDomain()
	}
	return out
}

// messageRecord is the GORM model for chat messages. The session and
// sequence pair is unique: sequences are never reused within a session.
type messageRecord struct {
	ID         string `gorm:"primaryKey"`
	SessionID  string `gorm:"index:idx_session_sequence,unique,priority:1"`
	Sequence   uint64 `gorm:"index:idx_session_sequence,unique,priority:2"`
	AuthorID   string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

func (messageRecord) TableName() string { return "chat_messages" }

func (r *messageRecord) toDomain() *domainchat.Message {
	return &domainchat.Message{
		ID:         r.ID,
		SessionID:  r.SessionID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Body:       r.Body,
		Sequence:   r.Sequence,
		CreatedAt:  r.CreatedAt,
	}
}

func toMessageRecord(m *domainchat.Message) *messageRecord {
	return &messageRecord{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Sequence:   m.Sequence,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}
