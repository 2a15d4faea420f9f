package pollstore

import (
	"maps"
	"time"

	"github.com/marcelojr/enquetes/internal/domain"
)

func pollKey(code string) string { return "poll:" + code }

func slidesKey(code string) string { return "poll:" + code + ":slides" }

func votersKey(code string, slideID domain.SlideID) string {
	return "poll:" + code + ":slide:" + string(slideID) + ":voters"
}

func participantsKey(code string, slideID domain.SlideID) string {
	return "poll:" + code + ":slide:" + string(slideID) + ":participants"
}

// encodePoll gera o hash completo da enquete. O espelho sempre grava todos os campos.
func encodePoll(p domain.Poll) map[string]string {
	h := map[string]string{
		"id":              string(p.ID),
		"code":            p.Code,
		"title":           p.Title,
		"presenter_id":    p.PresenterID,
		"active_slide_id": string(p.ActiveSlideID),
		"status":          string(p.Status),
		"created_at":      formatTime(p.CreatedAt),
		"expires_at":      formatTime(p.ExpiresAt),
		"completed_at":    "",
	}
	if p.CompletedAt != nil {
		h["completed_at"] = formatTime(*p.CompletedAt)
	}
	return h
}

// decodePoll devolve false para hashes vazios ou incompletos, que são tratados como miss.
func decodePoll(h map[string]string) (domain.Poll, bool) {
	if h["id"] == "" || h["code"] == "" {
		return domain.Poll{}, false
	}
	status := domain.PollStatus(h["status"])
	if !status.Valid() {
		return domain.Poll{}, false
	}
	createdAt, err := time.Parse(time.RFC3339Nano, h["created_at"])
	if err != nil {
		return domain.Poll{}, false
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, h["expires_at"])
	if err != nil {
		return domain.Poll{}, false
	}

	p := domain.Poll{
		ID:            domain.PollID(h["id"]),
		Code:          h["code"],
		Title:         h["title"],
		PresenterID:   h["presenter_id"],
		ActiveSlideID: domain.SlideID(h["active_slide_id"]),
		Status:        status,
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
	}
	if raw := h["completed_at"]; raw != "" {
		completedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Poll{}, false
		}
		p.CompletedAt = &completedAt
	}
	return p, true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func samePoll(a, b domain.Poll) bool {
	return maps.Equal(encodePoll(a), encodePoll(b))
}
