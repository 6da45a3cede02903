package model

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestCanTransitionRequest(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{RequestPending, RequestInProgress, true},
		{RequestPending, RequestFailed, true},
		{RequestInProgress, RequestCompleted, true},
		{RequestInProgress, RequestFailed, true},
		{RequestFailed, RequestPending, true}, // explicit retry
		// Illegal moves.
		{RequestPending, RequestCompleted, false},
		{RequestInProgress, RequestPending, false},
		{RequestCompleted, RequestPending, false},
		{RequestCompleted, RequestInProgress, false},
		{RequestCompleted, RequestFailed, false},
		{RequestFailed, RequestInProgress, false},
		{RequestFailed, RequestCompleted, false},
		{"unknown", RequestPending, false},
	}

	for _, tt := range tests {
		if got := CanTransitionRequest(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransitionRequest(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestRequestTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := &Request{ID: "req-1", Status: RequestPending}

	if err := r.Transition(RequestInProgress, now); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if r.Status != RequestInProgress || !r.UpdatedAt.Equal(now) {
		t.Errorf("unexpected state after transition: %+v", r)
	}

	if err := r.Transition(RequestCompleted, now.Add(time.Hour)); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	// COMPLETED is terminal; failure must not mutate the request.
	before := *r
	err := r.Transition(RequestPending, now.Add(2*time.Hour))
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if ite.From != RequestCompleted || ite.To != RequestPending {
		t.Errorf("error carries wrong states: %v", ite)
	}
	if !reflect.DeepEqual(*r, before) {
		t.Errorf("request mutated on illegal transition: %+v", r)
	}
}

func TestRequestRetryWalk(t *testing.T) {
	now := time.Now()
	r := &Request{Status: RequestPending}

	// PENDING -> FAILED -> PENDING -> IN_PROGRESS -> COMPLETED.
	for _, to := range []string{RequestFailed, RequestPending, RequestInProgress, RequestCompleted} {
		if err := r.Transition(to, now); err != nil {
			t.Fatalf("Transition(%s): %v", to, err)
		}
	}
	if r.Status != RequestCompleted {
		t.Errorf("expected COMPLETED, got %s", r.Status)
	}
}
