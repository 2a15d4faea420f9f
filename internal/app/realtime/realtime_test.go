package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/domain"
)

func slide(id string, ordem int, votos ...int64) domain.SlideView {
	sv := domain.SlideView{Slide: domain.Slide{ID: domain.SlideID(id), OrderIndex: ordem}}
	for i, v := range votos {
		sv.Options = append(sv.Options, domain.Option{ID: domain.OptionID(id + "-" + string(rune('a'+i))), VoteCount: v})
	}
	return sv
}

func TestState_Apply_DeveSerIdempotente(t *testing.T) {
	s := NewState()
	snap := domain.Snapshot{Code: "1234", Status: domain.PollStatusActive, ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0, 1, 0)}}

	assert.True(t, s.Apply(snap))
	assert.False(t, s.Apply(snap))
}

func TestState_Apply_DeveMesclarSlidesPorIDEOrdenar(t *testing.T) {
	s := NewState()
	s.Apply(domain.Snapshot{Code: "1234", Status: domain.PollStatusActive, ActiveSlideID: "s1", Slides: []domain.SlideView{
		slide("s2", 1, 0), slide("s1", 0, 0, 0),
	}})

	// Act: vote-updated traz apenas o slide afetado
	mudou := s.Apply(domain.Snapshot{Code: "1234", Status: domain.PollStatusActive, ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0, 3, 1)}})

	// Assert
	require.True(t, mudou)
	atual := s.Snapshot()
	require.Len(t, atual.Slides, 2)
	assert.Equal(t, domain.SlideID("s1"), atual.Slides[0].ID)
	assert.Equal(t, int64(3), atual.Slides[0].Options[0].VoteCount)
	assert.Equal(t, domain.SlideID("s2"), atual.Slides[1].ID)
}

func TestState_Apply_QuandoNovoSlide_DeveAcrescentar(t *testing.T) {
	s := NewState()
	s.Apply(domain.Snapshot{Code: "1234", ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0)}})

	mudou := s.Apply(domain.Snapshot{Code: "1234", ActiveSlideID: "s3", Slides: []domain.SlideView{slide("s3", 1)}})

	assert.True(t, mudou)
	atual := s.Snapshot()
	assert.Equal(t, domain.SlideID("s3"), atual.ActiveSlideID)
	assert.Len(t, atual.Slides, 2)
}

func TestHub_PublishESubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	msgs, err := hub.Subscribe(ctx, Channel("1234"))
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers("poll-1234"))

	// Act
	require.NoError(t, hub.Publish(ctx, "poll-1234", EventVoteUpdated, domain.Snapshot{Code: "1234"}))
	require.NoError(t, hub.Publish(ctx, "poll-9999", EventVoteUpdated, domain.Snapshot{Code: "9999"}))

	// Assert
	msg := <-msgs
	assert.Equal(t, EventVoteUpdated, msg.Event)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, "1234", snap.Code)

	cancel()
	assert.Eventually(t, func() bool { return hub.Subscribers("poll-1234") == 0 }, time.Second, 5*time.Millisecond)
}

type publisherFalho struct{}

func (publisherFalho) Publish(context.Context, string, string, any) error {
	return errors.New("barramento fora")
}

func TestNotifier_QuandoPublicacaoFalha_NaoDevePropagar(t *testing.T) {
	n := NewNotifier(publisherFalho{}, nil)

	assert.NotPanics(t, func() {
		n.PollUpdated(context.Background(), domain.Snapshot{Code: "1234"})
		n.VoteUpdated(context.Background(), domain.Snapshot{Code: "1234"})
	})
}

func TestNotifier_DevePublicarNoCanalDaEnquete(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := hub.Subscribe(ctx, "poll-1234")
	require.NoError(t, err)

	NewNotifier(hub, nil).PollUpdated(ctx, domain.Snapshot{Code: "1234", ActiveSlideID: "s1"})

	msg := <-msgs
	assert.Equal(t, EventPollUpdated, msg.Event)
	assert.Equal(t, "poll-1234", msg.Channel)
}

type coletor struct {
	mu     sync.Mutex
	snaps  []domain.Snapshot
	events []string
}

func (c *coletor) onChange(event string, snap domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	c.snaps = append(c.snaps, snap)
	return nil
}

func (c *coletor) ultimo() (domain.Snapshot, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snaps) == 0 {
		return domain.Snapshot{}, 0
	}
	return c.snaps[len(c.snaps)-1], len(c.snaps)
}

func TestFollower_SomenteConsultaPeriodica_DeveConvergir(t *testing.T) {
	var votos atomic.Int64
	fetch := func(context.Context, string) (domain.Snapshot, error) {
		return domain.Snapshot{Code: "1234", ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0, votos.Load())}}, nil
	}
	f := NewFollower(nil, fetch, 10*time.Millisecond, nil)
	c := &coletor{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = f.Run(ctx, "1234", c.onChange) }()

	votos.Store(5)
	assert.Eventually(t, func() bool {
		snap, _ := c.ultimo()
		return len(snap.Slides) == 1 && snap.Slides[0].Options[0].VoteCount == 5
	}, time.Second, 5*time.Millisecond)
}

func TestFollower_SomenteBarramento_DeveAplicarEventos(t *testing.T) {
	hub := NewHub()
	fetch := func(context.Context, string) (domain.Snapshot, error) {
		return domain.Snapshot{Code: "1234", ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0, 0)}}, nil
	}
	// intervalo longo: apenas a primeira consulta acontece durante o teste
	f := NewFollower(hub, fetch, time.Hour, nil)
	c := &coletor{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = f.Run(ctx, "1234", c.onChange) }()
	require.Eventually(t, func() bool {
		_, n := c.ultimo()
		return n == 1 && hub.Subscribers("poll-1234") == 1
	}, time.Second, 5*time.Millisecond)

	// Act
	snap := domain.Snapshot{Code: "1234", ActiveSlideID: "s1", Slides: []domain.SlideView{slide("s1", 0, 7)}}
	require.NoError(t, hub.Publish(ctx, "poll-1234", EventVoteUpdated, snap))
	require.NoError(t, hub.Publish(ctx, "poll-1234", EventVoteUpdated, snap))

	// Assert: o evento repetido não gera nova notificação
	assert.Eventually(t, func() bool {
		ultimo, n := c.ultimo()
		return n == 2 && ultimo.Slides[0].Options[0].VoteCount == 7
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	_, n := c.ultimo()
	assert.Equal(t, 2, n)
}

func TestFollower_QuandoEnqueteSome_DeveEncerrarComNotFound(t *testing.T) {
	fetch := func(context.Context, string) (domain.Snapshot, error) {
		return domain.Snapshot{}, domain.NewNotFoundError("enquete", "1234")
	}
	f := NewFollower(NewHub(), fetch, 10*time.Millisecond, nil)

	err := f.Run(context.Background(), "1234", (&coletor{}).onChange)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
