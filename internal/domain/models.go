package domain

import (
	"time"

	"gorm.io/datatypes"
)

type (
	PollID         string
	SlideID        string
	OptionID       string
	VoteID         string
	PresentationID string
)

type PollStatus string

const (
	PollStatusActive    PollStatus = "active"
	PollStatusCompleted PollStatus = "completed"
	PollStatusExpired   PollStatus = "expired"
)

func (s PollStatus) Valid() bool {
	switch s {
	case PollStatusActive, PollStatusCompleted, PollStatusExpired:
		return true
	}
	return false
}

type SlideType string

const (
	SlideTypeQuiz      SlideType = "quiz"
	SlideTypeWordCloud SlideType = "word-cloud"
)

func (t SlideType) Valid() bool {
	return t == SlideTypeQuiz || t == SlideTypeWordCloud
}

// DefaultStyle devolve o estilo de visualização usado quando o slide não informa um.
func (t SlideType) DefaultStyle() string {
	if t == SlideTypeWordCloud {
		return "cloud"
	}
	return "donut"
}

// Poll é a enquete ao vivo. Uma enquete está "viva" enquanto ArchivedAt for nulo,
// e o código só é único entre enquetes vivas.
type Poll struct {
	ID            PollID     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Code          string     `gorm:"column:code;type:varchar(12);not null;uniqueIndex:idx_polls_code_live,where:archived_at IS NULL" json:"code"`
	Title         string     `gorm:"column:title;type:text;not null" json:"title"`
	PresenterID   string     `gorm:"column:presenter_id;type:varchar(128);index" json:"presenter_id,omitempty"`
	ActiveSlideID SlideID    `gorm:"column:active_slide_id;type:char(26)" json:"active_slide_id"`
	Status        PollStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ArchivedAt    *time.Time `gorm:"column:archived_at;index" json:"archived_at,omitempty"`
}

func (p Poll) Anonymous() bool { return p.PresenterID == "" }

// OverdueAt indica se a enquete ativa já passou do prazo de expiração.
func (p Poll) OverdueAt(now time.Time) bool {
	return p.Status == PollStatusActive && !now.Before(p.ExpiresAt)
}

type Slide struct {
	ID         SlideID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	PollID     PollID    `gorm:"column:poll_id;type:varchar(36);not null;uniqueIndex:idx_slides_poll_order,priority:1" json:"poll_id"`
	Type       SlideType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Question   string    `gorm:"column:question;type:text;not null" json:"question"`
	OrderIndex int       `gorm:"column:order_index;not null;uniqueIndex:idx_slides_poll_order,priority:2" json:"order_index"`
	Style      string    `gorm:"column:style;type:varchar(32)" json:"style,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// Option guarda o contador de votos. NormalizedText só é preenchido em slides de nuvem
// de palavras e é único por slide, o que impede duplicatas sob concorrência.
type Option struct {
	ID             OptionID  `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	SlideID        SlideID   `gorm:"column:slide_id;type:char(26);not null;index;uniqueIndex:idx_options_slide_normalized,priority:1" json:"slide_id"`
	Text           string    `gorm:"column:text;type:text;not null" json:"text"`
	VoteCount      int64     `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
	Color          string    `gorm:"column:color;type:varchar(16)" json:"color,omitempty"`
	NormalizedText *string   `gorm:"column:normalized_text;type:text;uniqueIndex:idx_options_slide_normalized,priority:2" json:"-"`
	Position       int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// Vote é o registro durável de deduplicação: um token por slide.
type Vote struct {
	ID         VoteID    `gorm:"column:id;type:char(26);primaryKey"`
	PollID     PollID    `gorm:"column:poll_id;type:varchar(36);not null;index"`
	SlideID    SlideID   `gorm:"column:slide_id;type:char(26);not null;uniqueIndex:idx_votes_slide_voter,priority:1"`
	OptionID   OptionID  `gorm:"column:option_id;type:char(26);not null;index"`
	VoterToken string    `gorm:"column:voter_token;type:varchar(128);not null;uniqueIndex:idx_votes_slide_voter,priority:2"`
	OriginIP   string    `gorm:"column:origin_ip;type:varchar(64)"`
	UserAgent  string    `gorm:"column:user_agent;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

type Participant struct {
	SlideID    SlideID   `gorm:"column:slide_id;type:char(26);primaryKey"`
	VoterToken string    `gorm:"column:voter_token;type:varchar(128);primaryKey"`
	PollID     PollID    `gorm:"column:poll_id;type:varchar(36);not null;index"`
	JoinedAt   time.Time `gorm:"column:joined_at;not null"`
}

// SlideSpec descreve um slide a ser criado, seja numa enquete nova ou numa apresentação salva.
type SlideSpec struct {
	Type     SlideType `json:"type" binding:"required,oneof=quiz word-cloud"`
	Question string    `json:"question" binding:"required,max=500"`
	Options  []string  `json:"options,omitempty" binding:"omitempty,max=12,dive,max=200"`
	Style    string    `json:"style,omitempty" binding:"omitempty,max=32"`
}

type SavedPresentation struct {
	ID        PresentationID                 `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	OwnerID   string                         `gorm:"column:owner_id;type:varchar(128);not null;index" json:"owner_id"`
	Title     string                         `gorm:"column:title;type:text;not null" json:"title"`
	Slides    datatypes.JSONSlice[SlideSpec] `gorm:"column:slides;not null" json:"slides"`
	CreatedAt time.Time                      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time                      `gorm:"column:updated_at;not null" json:"updated_at"`
}

// AdminUser concede acesso administrativo. A chave canônica é sempre o id do usuário.
type AdminUser struct {
	UserID    string    `gorm:"column:user_id;type:varchar(128);primaryKey" json:"user_id"`
	GrantedBy string    `gorm:"column:granted_by;type:varchar(128)" json:"granted_by,omitempty"`
	GrantedAt time.Time `gorm:"column:granted_at;not null" json:"granted_at"`
}

// SlideView é o slide com suas opções, na forma enviada aos clientes.
type SlideView struct {
	Slide
	Options []Option `json:"options"`
}

// PollView é o snapshot completo de uma enquete: metadados, slides ordenados e opções.
type PollView struct {
	Poll
	Slides []SlideView `json:"slides"`
}

func (v PollView) Slide(id SlideID) (SlideView, bool) {
	for _, s := range v.Slides {
		if s.ID == id {
			return s, true
		}
	}
	return SlideView{}, false
}

// Snapshot é o payload dos eventos em tempo real. Em "vote-updated" Slides traz apenas o slide afetado.
type Snapshot struct {
	Code          string      `json:"code"`
	Status        PollStatus  `json:"status"`
	ActiveSlideID SlideID     `json:"active_slide_id"`
	Slides        []SlideView `json:"slides"`
}

type OptionResult struct {
	OptionID   OptionID `json:"option_id"`
	Text       string   `json:"text"`
	Color      string   `json:"color,omitempty"`
	Votes      int64    `json:"votes"`
	Percentage float64  `json:"percentage"`
}

type VoteResults struct {
	SlideID          SlideID        `json:"slide_id"`
	Options          []OptionResult `json:"options"`
	TotalVotes       int64          `json:"total_votes"`
	ParticipantCount int64          `json:"participant_count"`
}

type PollSummary struct {
	Poll
	SlideCount int64 `json:"slide_count"`
}

type PresenterStats struct {
	PresenterID       string `json:"presenter_id"`
	PollCount         int64  `json:"poll_count"`
	PresentationCount int64  `json:"presentation_count"`
}

func (Poll) TableName() string { return "polls" }

func (Slide) TableName() string { return "slides" }

func (Option) TableName() string { return "options" }

func (Vote) TableName() string { return "votes" }

func (Participant) TableName() string { return "slide_participants" }

func (SavedPresentation) TableName() string { return "saved_presentations" }

func (AdminUser) TableName() string { return "admin_users" }
