package httpapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/marcelojr/enquetes/internal/domain"
)

type MockPollService struct {
	mock.Mock
}

func (m *MockPollService) CreatePoll(ctx context.Context, in domain.CreatePollInput, presenterID string) (domain.PollView, error) {
	args := m.Called(ctx, in, presenterID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) GetPoll(ctx context.Context, code string) (domain.PollView, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) UpdateActiveSlide(ctx context.Context, code string, slideID domain.SlideID, presenterID string) (domain.PollView, error) {
	args := m.Called(ctx, code, slideID, presenterID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) UpdatePollStatus(ctx context.Context, code string, status domain.PollStatus, presenterID string) (domain.PollView, error) {
	args := m.Called(ctx, code, status, presenterID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) ArchivePoll(ctx context.Context, code, presenterID string) error {
	return m.Called(ctx, code, presenterID).Error(0)
}

func (m *MockPollService) DeletePoll(ctx context.Context, code, presenterID string) error {
	return m.Called(ctx, code, presenterID).Error(0)
}

func (m *MockPollService) AddSlideToPoll(ctx context.Context, code string, in domain.AddSlideInput, presenterID string) (domain.PollView, error) {
	args := m.Called(ctx, code, in, presenterID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) CompletePoll(ctx context.Context, code, presenterID string) (domain.PollView, error) {
	args := m.Called(ctx, code, presenterID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

func (m *MockPollService) ListByPresenter(ctx context.Context, presenterID string) ([]domain.PollSummary, error) {
	args := m.Called(ctx, presenterID)
	return args.Get(0).([]domain.PollSummary), args.Error(1)
}

type MockVotingService struct {
	mock.Mock
}

func (m *MockVotingService) SubmitVote(ctx context.Context, req domain.VoteRequest) (domain.VoteReceipt, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.VoteReceipt), args.Error(1)
}

func (m *MockVotingService) TrackParticipant(ctx context.Context, code string, slideID domain.SlideID, voterToken string) error {
	return m.Called(ctx, code, slideID, voterToken).Error(0)
}

func (m *MockVotingService) GetVotedSlideIDs(ctx context.Context, code string, slideIDs []domain.SlideID, voterToken string) ([]domain.SlideID, error) {
	args := m.Called(ctx, code, slideIDs, voterToken)
	return args.Get(0).([]domain.SlideID), args.Error(1)
}

func (m *MockVotingService) GetVoteResults(ctx context.Context, code string, slideID domain.SlideID) (domain.VoteResults, error) {
	args := m.Called(ctx, code, slideID)
	return args.Get(0).(domain.VoteResults), args.Error(1)
}

type MockPresentationService struct {
	mock.Mock
}

func (m *MockPresentationService) List(ctx context.Context, ownerID string) ([]domain.SavedPresentation, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.SavedPresentation), args.Error(1)
}

func (m *MockPresentationService) Get(ctx context.Context, id domain.PresentationID, ownerID string) (domain.SavedPresentation, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(domain.SavedPresentation), args.Error(1)
}

func (m *MockPresentationService) Save(ctx context.Context, p domain.SavedPresentation) (domain.SavedPresentation, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.SavedPresentation), args.Error(1)
}

func (m *MockPresentationService) Delete(ctx context.Context, id domain.PresentationID, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockPresentationService) Launch(ctx context.Context, id domain.PresentationID, ownerID string) (domain.PollView, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(domain.PollView), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminService) ListPolls(ctx context.Context, status domain.PollStatus) ([]domain.PollSummary, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.PollSummary), args.Error(1)
}

func (m *MockAdminService) Stats(ctx context.Context) ([]domain.PresenterStats, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PresenterStats), args.Error(1)
}

func (m *MockAdminService) SystemStatus() domain.SystemStatus {
	return m.Called().Get(0).(domain.SystemStatus)
}

func (m *MockAdminService) RunAction(ctx context.Context, action string) (domain.MaintenanceReport, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.MaintenanceReport), args.Error(1)
}

// tokenAuth aceita apenas os tokens cadastrados no mapa.
type tokenAuth map[string]string

func (t tokenAuth) Authenticate(_ context.Context, bearer string) (string, error) {
	if id, ok := t[bearer]; ok {
		return id, nil
	}
	return "", domain.ErrUnauthorized
}

// scriptedStreamer entrega os snapshots em ordem e termina com o erro configurado.
type scriptedStreamer struct {
	eventos []domain.Snapshot
	err     error
}

func (s scriptedStreamer) Run(_ context.Context, _ string, onChange func(string, domain.Snapshot) error) error {
	for _, snap := range s.eventos {
		if err := onChange("poll-updated", snap); err != nil {
			return err
		}
	}
	return s.err
}
