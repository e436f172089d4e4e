package app

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jaminalder/codex-reversi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx"
)

func TestMain(m *testing.M) {
	logx.Disable()
	os.Exit(m.Run())
}

// minimal renderer for tests: encode turn and score as bytes
func testRenderer(gs GameState) []byte {
	s := gs.Game.Score()
	return []byte(fmt.Sprintf("turn=%s black=%d white=%d", gs.Game.Turn, s.Black, s.White))
}

func TestCreateAndGet(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	gs, err := s.CreateGame(domain.CellVariant)
	require.NoError(t, err)
	assert.NotEmpty(t, gs.ID)
	assert.Equal(t, domain.Black, gs.Game.Turn)
	assert.False(t, gs.Created.IsZero())
	assert.False(t, gs.Updated.IsZero())

	got, ok := s.Get(gs.ID)
	require.True(t, ok)
	assert.Equal(t, gs.ID, got.ID)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestCreateRejectsBrokenVariant(t *testing.T) {
	s := NewService()
	_, err := s.CreateGame(domain.Variant{Name: "bad", Size: 2, Layout: []domain.Stone{{Pos: domain.Pos{R: 5}, Cell: domain.Black}}})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestPlayAlternatesTurns(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	gs, _ := s.CreateGame(domain.CellVariant)

	st, err := s.Play(gs.ID, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.White, st.Game.Turn)
	assert.Equal(t, domain.Black, st.Game.Board.At(domain.Pos{R: 3, C: 3}))

	st, err = s.Play(gs.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Black, st.Game.Turn)
}

func TestRejectedPlayChangesNothing(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	gs, _ := s.CreateGame(domain.CellVariant)

	_, err := s.Play(gs.ID, 3, 3)
	assert.ErrorIs(t, err, domain.ErrIllegalMove)
	_, err = s.Play(gs.ID, 9, 9)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = s.Pass(gs.ID)
	assert.ErrorIs(t, err, domain.ErrCannotPass)

	got, _ := s.Get(gs.ID)
	assert.Equal(t, gs.Game.Turn, got.Game.Turn)
	assert.Equal(t, gs.Game.Board.Rows(), got.Game.Board.Rows())
	assert.Equal(t, gs.Updated, got.Updated)
}

func TestUnknownGame(t *testing.T) {
	s := NewService()
	_, err := s.Play("nope", 2, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Pass("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Reset("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ch, unsub := s.Subscribe(context.Background(), "nope")
	defer unsub()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame(domain.IntersectionVariant)
	_, err := s.Play(gs.ID, 2, 3)
	require.NoError(t, err)

	st, err := s.Reset(gs.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Black, st.Game.Turn)
	assert.Equal(t, gs.Game.Board.Rows(), st.Game.Board.Rows())
	assert.Equal(t, domain.IntersectionVariant.Name, st.Game.Variant.Name)
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	gs, _ := s.CreateGame(domain.CellVariant)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub := s.Subscribe(ctx, gs.ID)
	defer unsub()

	_, err := s.Play(gs.ID, 2, 3)
	require.NoError(t, err)

	select {
	case b, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		assert.Equal(t, "turn=white black=4 white=1", string(b))
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	gs, _ := s.CreateGame(domain.CellVariant)

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	defer cancelSlow()
	slowCh, _ := s.Subscribe(ctxSlow, gs.ID)

	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast := s.Subscribe(ctxFast, gs.ID)
	defer unsubFast()

	_, err := s.Play(gs.ID, 2, 3)
	require.NoError(t, err)
	<-fastCh
	_, err = s.Play(gs.ID, 2, 2)
	require.NoError(t, err)
	<-fastCh

	// first payload still buffered, then closed after the second was dropped
	_, ok := <-slowCh
	assert.True(t, ok)
	_, ok = <-slowCh
	assert.False(t, ok)
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame(domain.CellVariant)
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := s.Subscribe(ctx, gs.ID)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}
