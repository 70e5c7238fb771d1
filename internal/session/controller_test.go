package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/session/mocks"
	"portfolio-chat/internal/store"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// emptyStart sets the store expectations for construction on a fresh slot.
func emptyStart(st *mocks.MockStore) {
	st.EXPECT().Load(gomock.Any(), store.HistoryKey).Return("", false, nil)
	st.EXPECT().Load(gomock.Any(), store.ModeKey).Return("", false, nil)
}

func TestSubmit_SuccessAppendsUserAndAssistant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	emptyStart(st)
	st.EXPECT().Save(gomock.Any(), store.HistoryKey, gomock.Any()).Return(nil).Times(2)

	payload := &models.ScorePayload{}
	canonical := &models.CanonicalScore{Aggregate: 8.0, Label: "Good"}
	gw.EXPECT().SendTurn(gomock.Any(), "What did you build?", models.ModeAMA).
		Return(&models.ChatResponse{
			Response:   "A retrieval-backed portfolio assistant.",
			Mode:       "ama",
			JudgeScore: payload,
			Sources:    []string{"projects.md"},
		}, nil)
	norm.EXPECT().Normalize(payload).Return(canonical)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if err := c.Submit(context.Background(), "What did you build?"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	messages := c.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != models.RoleUser || messages[1].Role != models.RoleAssistant {
		t.Errorf("expected user then assistant, got %s then %s", messages[0].Role, messages[1].Role)
	}
	if messages[0].ID == messages[1].ID {
		t.Error("message ids must be unique")
	}
	if messages[1].Score != canonical {
		t.Error("assistant message should carry the canonical score")
	}
	if c.LatestScore() != canonical {
		t.Error("latest score should be updated on a judged reply")
	}
	if c.Status() != StatusIdle {
		t.Errorf("expected idle after completion, got %s", c.Status())
	}
}

func TestSubmit_FailureAppendsFallbackMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	emptyStart(st)
	st.EXPECT().Save(gomock.Any(), store.HistoryKey, gomock.Any()).Return(nil).Times(2)
	gw.EXPECT().SendTurn(gomock.Any(), "hello", models.ModeAMA).
		Return(nil, errors.New("connection refused"))

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if err := c.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("a failed turn must not surface as a Submit error: %v", err)
	}

	messages := c.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected user plus synthetic error message, got %d messages", len(messages))
	}
	if messages[1].Content != ErrorFallbackText {
		t.Errorf("expected fallback text, got %q", messages[1].Content)
	}
	if messages[1].Score != nil {
		t.Error("synthetic error message must not carry a score")
	}
	if c.LatestScore() != nil {
		t.Error("latest score must be unchanged on failure")
	}
	if c.Status() != StatusIdle {
		t.Error("session must return to idle after a failed turn")
	}
}

func TestSubmit_BlankRejectedWithoutStateChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	emptyStart(st)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if err := c.Submit(context.Background(), "   \t  "); !errors.Is(err, ErrBlankSubmission) {
		t.Fatalf("expected ErrBlankSubmission, got %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Error("blank submission must not change the log")
	}
}

func TestSubmit_SecondTurnRejectedWhileInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	emptyStart(st)
	st.EXPECT().Save(gomock.Any(), store.HistoryKey, gomock.Any()).Return(nil).AnyTimes()
	norm.EXPECT().Normalize(gomock.Any()).Return(nil).AnyTimes()

	started := make(chan struct{})
	release := make(chan struct{})
	gw.EXPECT().SendTurn(gomock.Any(), "first", models.ModeAMA).
		DoAndReturn(func(context.Context, string, models.InteractionMode) (*models.ChatResponse, error) {
			close(started)
			<-release
			return &models.ChatResponse{Response: "ok", Mode: "ama"}, nil
		})

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.Submit(context.Background(), "first"); err != nil {
			t.Errorf("first Submit failed: %v", err)
		}
	}()

	<-started
	if c.Status() != StatusSubmitting {
		t.Errorf("expected submitting status, got %s", c.Status())
	}
	if err := c.Submit(context.Background(), "second"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight, got %v", err)
	}
	if len(c.Messages()) != 1 {
		t.Errorf("rejected submission must not append messages, log has %d", len(c.Messages()))
	}

	close(release)
	wg.Wait()

	if len(c.Messages()) != 2 {
		t.Errorf("expected 2 messages after the first turn completed, got %d", len(c.Messages()))
	}
}

func TestChangeMode_DoesNotRewriteInFlightTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	emptyStart(st)
	st.EXPECT().Save(gomock.Any(), store.HistoryKey, gomock.Any()).Return(nil).AnyTimes()
	st.EXPECT().Save(gomock.Any(), store.ModeKey, string(models.ModeRecruiter)).Return(nil)
	norm.EXPECT().Normalize(gomock.Any()).Return(nil).AnyTimes()

	started := make(chan struct{})
	release := make(chan struct{})
	// The gateway must see the mode captured at submission time.
	gw.EXPECT().SendTurn(gomock.Any(), "question", models.ModeEngineer).
		DoAndReturn(func(context.Context, string, models.InteractionMode) (*models.ChatResponse, error) {
			close(started)
			<-release
			return &models.ChatResponse{Response: "ok", Mode: "engineer"}, nil
		})

	c := NewController(context.Background(), gw, st, norm, models.ModeEngineer, newTestLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Submit(context.Background(), "question")
	}()

	<-started
	if err := c.ChangeMode(context.Background(), models.ModeRecruiter); err != nil {
		t.Fatalf("ChangeMode failed: %v", err)
	}
	close(release)
	wg.Wait()

	messages := c.Messages()
	if messages[0].Mode != models.ModeEngineer {
		t.Errorf("user message mode must stay %s, got %s", models.ModeEngineer, messages[0].Mode)
	}
	if messages[1].Mode != models.ModeEngineer {
		t.Errorf("assistant message mode must reflect the turn's mode, got %s", messages[1].Mode)
	}
	if c.Mode() != models.ModeRecruiter {
		t.Errorf("session mode should now be %s, got %s", models.ModeRecruiter, c.Mode())
	}
}

func TestClear_RequiresConfirmation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	history, _ := json.Marshal([]models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "hi", Mode: models.ModeAMA, Timestamp: time.Now()},
	})
	st.EXPECT().Load(gomock.Any(), store.HistoryKey).Return(string(history), true, nil)
	st.EXPECT().Load(gomock.Any(), store.ModeKey).Return("", false, nil)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if err := c.Clear(context.Background(), false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(c.Messages()) != 1 {
		t.Error("unconfirmed clear must not touch the log")
	}

	st.EXPECT().Clear(gomock.Any(), store.HistoryKey).Return(nil)
	if err := c.Clear(context.Background(), true); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Error("confirmed clear must empty the log")
	}
	if c.LatestScore() != nil {
		t.Error("confirmed clear must drop the latest score")
	}
}

func TestRehydrate_RestoresHistoryModeAndLatestScore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	scored := &models.CanonicalScore{Aggregate: 7.5, Label: "Good"}
	history, _ := json.Marshal([]models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "hi", Mode: models.ModeEngineer, Timestamp: time.Now()},
		{ID: "m2", Role: models.RoleAssistant, Content: "hello", Mode: models.ModeEngineer, Score: scored, Timestamp: time.Now()},
		{ID: "m3", Role: models.RoleUser, Content: "more", Mode: models.ModeEngineer, Timestamp: time.Now()},
		{ID: "m4", Role: models.RoleAssistant, Content: ErrorFallbackText, Timestamp: time.Now()},
	})
	st.EXPECT().Load(gomock.Any(), store.HistoryKey).Return(string(history), true, nil)
	st.EXPECT().Load(gomock.Any(), store.ModeKey).Return("engineer", true, nil)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if len(c.Messages()) != 4 {
		t.Fatalf("expected 4 restored messages, got %d", len(c.Messages()))
	}
	if c.Mode() != models.ModeEngineer {
		t.Errorf("expected restored mode engineer, got %s", c.Mode())
	}
	// m4 has no score, so the latest judged reply is m2.
	latest := c.LatestScore()
	if latest == nil || latest.Aggregate != 7.5 {
		t.Errorf("expected latest score from the last judged message, got %+v", latest)
	}
}

func TestRehydrate_CorruptStateStartsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	st.EXPECT().Load(gomock.Any(), store.HistoryKey).Return("{not json", true, nil)
	st.EXPECT().Load(gomock.Any(), store.ModeKey).Return("pirate", true, nil)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if len(c.Messages()) != 0 {
		t.Error("corrupt history must start the session empty")
	}
	if c.Mode() != models.ModeAMA {
		t.Errorf("unknown stored mode must keep the default, got %s", c.Mode())
	}
}

func TestSubmit_PersistenceFailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	st := mocks.NewMockStore(ctrl)
	norm := mocks.NewMockNormalizer(ctrl)

	st.EXPECT().Load(gomock.Any(), store.HistoryKey).Return("", false, errors.New("storage disabled"))
	st.EXPECT().Load(gomock.Any(), store.ModeKey).Return("", false, errors.New("storage disabled"))
	st.EXPECT().Save(gomock.Any(), store.HistoryKey, gomock.Any()).Return(errors.New("quota exceeded")).Times(2)

	gw.EXPECT().SendTurn(gomock.Any(), "hi", models.ModeAMA).
		Return(&models.ChatResponse{Response: "hello", Mode: "ama"}, nil)
	norm.EXPECT().Normalize(gomock.Any()).Return(nil)

	c := NewController(context.Background(), gw, st, norm, models.ModeAMA, newTestLogger())

	if err := c.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit must succeed in memory-only mode: %v", err)
	}
	if len(c.Messages()) != 2 {
		t.Errorf("expected 2 messages despite persistence failures, got %d", len(c.Messages()))
	}
}
