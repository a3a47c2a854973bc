package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

func TestAskResolvesExchange(t *testing.T) {
	chat := NewChatService(&fakeModel{}, applogger.Nop())

	if err := chat.Ask(context.Background(), "ins-1", "why buy?", nil); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !waitUntil(func() bool { return !chat.Pending("ins-1") }) {
		t.Fatal("exchange never resolved")
	}
	history := chat.History("ins-1")
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if history[0].Answer != "answer to: why buy?" {
		t.Errorf("answer = %q", history[0].Answer)
	}
	if history[0].Question != "why buy?" {
		t.Errorf("question = %q", history[0].Question)
	}
}

func TestAskRejectsSecondPending(t *testing.T) {
	release := make(chan struct{})
	model := &fakeModel{answer: func(q string) (string, error) {
		<-release
		return "done", nil
	}}
	chat := NewChatService(model, applogger.Nop())

	if err := chat.Ask(context.Background(), "ins-1", "first", nil); err != nil {
		t.Fatal(err)
	}
	if err := chat.Ask(context.Background(), "ins-1", "second", nil); !errors.Is(err, ErrPending) {
		t.Errorf("second Ask err = %v, want ErrPending", err)
	}
	// other threads are independent
	if err := chat.Ask(context.Background(), "ins-2", "unrelated", nil); err != nil {
		t.Errorf("Ask on separate thread: %v", err)
	}

	close(release)
	if !waitUntil(func() bool { return !chat.Pending("ins-1") }) {
		t.Fatal("first exchange never resolved")
	}
	if err := chat.Ask(context.Background(), "ins-1", "third", nil); err != nil {
		t.Errorf("Ask after resolution: %v", err)
	}
}

func TestAskApologyOnModelFailure(t *testing.T) {
	model := &fakeModel{answer: func(q string) (string, error) {
		return "", errFetchDown
	}}
	chat := NewChatService(model, applogger.Nop())

	if err := chat.Ask(context.Background(), "ins-1", "anything?", nil); err != nil {
		t.Fatal(err)
	}
	if !waitUntil(func() bool { return !chat.Pending("ins-1") }) {
		t.Fatal("exchange never resolved")
	}

	history := chat.History("ins-1")
	if history[0].Answer != chatApology {
		t.Errorf("answer = %q, want the fixed apology", history[0].Answer)
	}
	if history[0].Pending {
		t.Error("exchange still pending after failure")
	}
}

func TestHistoryCapped(t *testing.T) {
	chat := NewChatService(&fakeModel{}, applogger.Nop())

	total := maxThreadExchanges + 5
	for i := 0; i < total; i++ {
		q := fmt.Sprintf("question %d", i)
		if err := chat.Ask(context.Background(), "ins-1", q, nil); err != nil {
			t.Fatalf("Ask %d: %v", i, err)
		}
		if !waitUntil(func() bool { return !chat.Pending("ins-1") }) {
			t.Fatalf("exchange %d never resolved", i)
		}
	}

	history := chat.History("ins-1")
	if len(history) != maxThreadExchanges {
		t.Fatalf("len(history) = %d, want %d", len(history), maxThreadExchanges)
	}
	if got, want := history[0].Question, fmt.Sprintf("question %d", total-maxThreadExchanges); got != want {
		t.Errorf("oldest retained question = %q, want %q", got, want)
	}
	if got, want := history[len(history)-1].Question, fmt.Sprintf("question %d", total-1); got != want {
		t.Errorf("newest question = %q, want %q", got, want)
	}
}

func TestHistoryReturnsCopies(t *testing.T) {
	chat := NewChatService(&fakeModel{}, applogger.Nop())
	if err := chat.Ask(context.Background(), "ins-1", "q", &models.Insight{Symbol: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	if !waitUntil(func() bool { return !chat.Pending("ins-1") }) {
		t.Fatal("exchange never resolved")
	}

	history := chat.History("ins-1")
	history[0].Answer = "mutated"
	if chat.History("ins-1")[0].Answer == "mutated" {
		t.Error("History exposes internal state")
	}
}

func TestHistoryUnknownThread(t *testing.T) {
	chat := NewChatService(&fakeModel{}, applogger.Nop())
	if h := chat.History("nope"); len(h) != 0 {
		t.Errorf("history for unknown thread = %v", h)
	}
	if chat.Pending("nope") {
		t.Error("Pending true for unknown thread")
	}
}
