package domain

import (
	"context"
	"time"
)

type PollFilter struct {
	Status        PollStatus
	PresenterID   string
	AnonymousOnly bool
	OwnedOnly     bool
	ExpiresBefore time.Time
	CreatedBefore time.Time
	Limit         int
}

type PollRepository interface {
	Create(ctx context.Context, poll Poll, slides []Slide, options []Option) error
	FindByCode(ctx context.Context, code string) (Poll, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	SetActiveSlide(ctx context.Context, id PollID, slideID SlideID) error
	TransitionStatus(ctx context.Context, id PollID, to PollStatus, at time.Time) (bool, error)
	Archive(ctx context.Context, id PollID, at time.Time) error
	Delete(ctx context.Context, id PollID) error
	List(ctx context.Context, filter PollFilter) ([]PollSummary, error)
}

type SlideRepository interface {
	ListByPoll(ctx context.Context, pollID PollID) ([]Slide, error)
	Append(ctx context.Context, slide Slide, options []Option) (Slide, error)
}

type OptionRepository interface {
	FindByID(ctx context.Context, id OptionID) (Option, error)
	ListBySlides(ctx context.Context, slideIDs []SlideID) ([]Option, error)
}

type VoteRepository interface {
	// Record grava o voto e incrementa a opção na mesma transação. Quando newOption não é nulo
	// a opção de nuvem de palavras é criada (ou reaproveitada pelo texto normalizado).
	Record(ctx context.Context, vote Vote, newOption *Option) (Option, error)
	HasVoted(ctx context.Context, slideID SlideID, voterToken string) (bool, error)
	VotedSlides(ctx context.Context, slideIDs []SlideID, voterToken string) ([]SlideID, error)
	ListVoters(ctx context.Context, slideID SlideID) ([]string, error)
}

type ParticipantRepository interface {
	Add(ctx context.Context, p Participant) error
	Count(ctx context.Context, slideID SlideID) (int64, error)
	ListTokens(ctx context.Context, slideID SlideID) ([]string, error)
}

type PresentationRepository interface {
	Create(ctx context.Context, p SavedPresentation) error
	Update(ctx context.Context, p SavedPresentation) error
	Delete(ctx context.Context, id PresentationID, ownerID string) error
	FindByID(ctx context.Context, id PresentationID) (SavedPresentation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]SavedPresentation, error)
}

type AdminRepository interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, admin AdminUser) error
	PresenterStats(ctx context.Context) ([]PresenterStats, error)
}

// Cache é o acelerador opcional. Nenhuma escrita nele é fonte de verdade.
type Cache interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// ReplaceHash troca o hash inteiro numa transação e aplica o TTL.
	ReplaceHash(ctx context.Context, key string, values map[string]string, ttl time.Duration) error
	SAdd(ctx context.Context, key string, members ...string) error
	SCard(ctx context.Context, key string) (int64, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
}

// PollStore é o repositório único usado pelos serviços: backend durável obrigatório e cache opcional.
type PollStore interface {
	CodeInUse(ctx context.Context, code string) (bool, error)
	CreatePoll(ctx context.Context, poll Poll, slides []Slide, options []Option) error
	PollByCode(ctx context.Context, code string) (Poll, error)
	Slides(ctx context.Context, poll Poll) ([]Slide, error)
	Options(ctx context.Context, slideIDs []SlideID) ([]Option, error)
	Option(ctx context.Context, id OptionID) (Option, error)
	SetActiveSlide(ctx context.Context, poll Poll, slideID SlideID) (Poll, error)
	TransitionStatus(ctx context.Context, poll Poll, to PollStatus, at time.Time) (Poll, error)
	Archive(ctx context.Context, poll Poll, at time.Time) error
	Delete(ctx context.Context, poll Poll) error
	AppendSlide(ctx context.Context, poll Poll, slide Slide, options []Option) (Slide, error)
	HasVoted(ctx context.Context, poll Poll, slideID SlideID, voterToken string) (bool, error)
	VotedSlideIDs(ctx context.Context, poll Poll, slideIDs []SlideID, voterToken string) ([]SlideID, error)
	RecordVote(ctx context.Context, poll Poll, vote Vote, newOption *Option) (Option, error)
	AddParticipant(ctx context.Context, poll Poll, slideID SlideID, voterToken string) error
	CountParticipants(ctx context.Context, poll Poll, slideID SlideID) (int64, error)
	List(ctx context.Context, filter PollFilter) ([]PollSummary, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Payload []byte `json:"payload"`
}

type Subscriber interface {
	// Subscribe entrega mensagens até o contexto ser cancelado; o canal é fechado ao final.
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
}

// Notifier publica snapshots após mutações. Falhas são registradas e engolidas.
type Notifier interface {
	PollUpdated(ctx context.Context, snap Snapshot)
	VoteUpdated(ctx context.Context, snap Snapshot)
}

type VoteAttempt struct {
	Code       string
	VoterToken string
	OriginIP   string
	UserAgent  string
}

type Antifraude interface {
	Validar(ctx context.Context, tentativa VoteAttempt) error
}

type Clock interface {
	Agora() time.Time
}

type Authenticator interface {
	// Authenticate devolve o id do usuário para a credencial bearer informada.
	Authenticate(ctx context.Context, bearer string) (string, error)
}

type CreatePollInput struct {
	Title  string      `json:"title" binding:"max=200"`
	Slides []SlideSpec `json:"slides" binding:"required,min=1,max=50,dive"`
}

type AddSlideInput struct {
	SlideSpec
	Activate bool `json:"activate"`
}

type VoteRequest struct {
	Code       string
	Ballot     Ballot
	VoterToken string
	OriginIP   string
	UserAgent  string
}

type VoteReceipt struct {
	SlideID SlideID `json:"slide_id"`
	Option  Option  `json:"option"`
}

type MaintenanceReport struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

type SystemStatus struct {
	CacheEnabled    bool   `json:"cache_enabled"`
	RealtimeBackend string `json:"realtime_backend"`
	Environment     string `json:"environment"`
	Version         string `json:"version"`
}

type PollService interface {
	CreatePoll(ctx context.Context, in CreatePollInput, presenterID string) (PollView, error)
	GetPoll(ctx context.Context, code string) (PollView, error)
	UpdateActiveSlide(ctx context.Context, code string, slideID SlideID, presenterID string) (PollView, error)
	UpdatePollStatus(ctx context.Context, code string, status PollStatus, presenterID string) (PollView, error)
	ArchivePoll(ctx context.Context, code, presenterID string) error
	DeletePoll(ctx context.Context, code, presenterID string) error
	AddSlideToPoll(ctx context.Context, code string, in AddSlideInput, presenterID string) (PollView, error)
	CompletePoll(ctx context.Context, code, presenterID string) (PollView, error)
	ListByPresenter(ctx context.Context, presenterID string) ([]PollSummary, error)
}

type VotingService interface {
	SubmitVote(ctx context.Context, req VoteRequest) (VoteReceipt, error)
	TrackParticipant(ctx context.Context, code string, slideID SlideID, voterToken string) error
	GetVotedSlideIDs(ctx context.Context, code string, slideIDs []SlideID, voterToken string) ([]SlideID, error)
	GetVoteResults(ctx context.Context, code string, slideID SlideID) (VoteResults, error)
}

type PresentationService interface {
	List(ctx context.Context, ownerID string) ([]SavedPresentation, error)
	Get(ctx context.Context, id PresentationID, ownerID string) (SavedPresentation, error)
	Save(ctx context.Context, p SavedPresentation) (SavedPresentation, error)
	Delete(ctx context.Context, id PresentationID, ownerID string) error
	Launch(ctx context.Context, id PresentationID, ownerID string) (PollView, error)
}

type AdminService interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	ListPolls(ctx context.Context, status PollStatus) ([]PollSummary, error)
	Stats(ctx context.Context) ([]PresenterStats, error)
	SystemStatus() SystemStatus
	RunAction(ctx context.Context, action string) (MaintenanceReport, error)
}
