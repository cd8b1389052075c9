package announcements

import (
	"context"
	"time"
)

const MaxMessageLen = 500

type Repo interface {
	SetActive(ctx context.Context, message string) (int64, error)
	GetActive(ctx context.Context) (*Announcement, error)
	Clear(ctx context.Context) error
}

// Announcement rows are append-only history: superseded and cleared
// announcements stay in the table with active unset.
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	Message   string    `db:"message" json:"message"`
	Active    bool      `db:"active" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SetAnnouncementRequest struct {
	Message string `json:"message"`
}

type SetAnnouncementResponse struct {
	Success        bool  `json:"success"`
	AnnouncementID int64 `json:"announcement_id"`
}

type GetAnnouncementResponse struct {
	Success      bool          `json:"success"`
	Announcement *Announcement `json:"announcement"`
}
