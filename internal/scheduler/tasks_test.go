package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/statemachine"
)

func TestTeleopsStatusTaskReportsLatestBattery(t *testing.T) {
	teleops := providers.NewTeleopsStatus()
	battery := providers.NewBatteryProvider()
	battery.Update(providers.BatteryState{PercentRemaining: 42, Charging: true})

	task := NewTeleopsStatusTask("rover-1", teleops, battery)
	if err := task.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(t.Context())
	go teleops.Start(ctx, func(_ context.Context, v string) error {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	})
	time.Sleep(50 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected one queued status report, got %v", got)
	}
	if !strings.Contains(got[0], "rover-1") || !strings.Contains(got[0], "42.0") {
		t.Fatalf("status report missing expected fields: %s", got[0])
	}
}

func TestApproachingPersonTaskResetsGreetingOnDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"person_detected": true})
	}))
	defer srv.Close()

	greeting := statemachine.NewGreetingConversation(time.Minute)
	greeting.ProcessConversationState("finished", time.Now())
	if greeting.State() != statemachine.Finished {
		t.Fatal("setup: expected the conversation to start Finished")
	}

	context := providers.NewContextProvider()
	context.Set(providers.GreetingConversationFinishedFlag, true)

	task := NewApproachingPersonTask(srv.URL, greeting, context)
	if err := task.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting.State() != statemachine.Engaging {
		t.Fatalf("expected Engaging after a detected approach, got %s", greeting.State())
	}
	if context.Flag(providers.GreetingConversationFinishedFlag) {
		t.Fatal("expected the finished flag cleared after a detected approach")
	}
}

func TestApproachingPersonTaskIgnoresNoDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"person_detected": false})
	}))
	defer srv.Close()

	greeting := statemachine.NewGreetingConversation(time.Minute)
	task := NewApproachingPersonTask(srv.URL, greeting, nil)
	if err := task.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting.State() != statemachine.Engaging {
		t.Fatalf("expected Engaging (unchanged default start state), got %s", greeting.State())
	}
}

func TestNavigationStatusTaskDrivesSucceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "succeeded"})
	}))
	defer srv.Close()

	nav := statemachine.NewNavigation()
	nav.GoalPublished()

	task := NewNavigationStatusTask(srv.URL, nav)
	if err := task.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nav.State() != statemachine.Succeeded {
		t.Fatalf("expected Succeeded, got %s", nav.State())
	}
}

func TestNavigationStatusTaskIgnoresStatusWhileIdle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "executing"})
	}))
	defer srv.Close()

	nav := statemachine.NewNavigation()
	task := NewNavigationStatusTask(srv.URL, nav)
	if err := task.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nav.State() != statemachine.Idle {
		t.Fatalf("expected Idle to stay unaffected by polling with no goal published, got %s", nav.State())
	}
}
