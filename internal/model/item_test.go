package model

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionAvailability(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{AvailabilityUncommitted, AvailabilityCommitted, true},
		{AvailabilityUncommitted, AvailabilityAssigned, true}, // direct assignment
		{AvailabilityCommitted, AvailabilityAssigned, true},
		{AvailabilityAssigned, AvailabilityUncommitted, true}, // reversal
		{AvailabilityCommitted, AvailabilityUncommitted, false},
		{AvailabilityAssigned, AvailabilityCommitted, false},
		{AvailabilityUncommitted, AvailabilityUncommitted, false},
	}

	for _, tt := range tests {
		if got := CanTransitionAvailability(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransitionAvailability(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTransitionAvailabilityAssignRequiresOrder(t *testing.T) {
	now := time.Now()
	item := &InventoryItem{ID: "DN-0001", Availability: AvailabilityUncommitted}

	if err := item.TransitionAvailability(AvailabilityAssigned, nil, now); err == nil {
		t.Fatal("expected error assigning without order id")
	}
	if item.Availability != AvailabilityUncommitted {
		t.Errorf("item mutated on failed assignment: %+v", item)
	}

	orderID := "order-42"
	if err := item.TransitionAvailability(AvailabilityAssigned, &orderID, now); err != nil {
		t.Fatalf("TransitionAvailability: %v", err)
	}
	if item.OrderID == nil || *item.OrderID != orderID {
		t.Errorf("order id not set: %+v", item)
	}
}

func TestTransitionAvailabilityReversalClearsOrder(t *testing.T) {
	now := time.Now()
	orderID := "order-42"
	item := &InventoryItem{ID: "DN-0001", Availability: AvailabilityAssigned, OrderID: &orderID}

	if err := item.TransitionAvailability(AvailabilityUncommitted, nil, now); err != nil {
		t.Fatalf("TransitionAvailability: %v", err)
	}
	if item.OrderID != nil {
		t.Errorf("order id not cleared on reversal: %+v", item)
	}
}

func TestTransitionAvailabilityIllegal(t *testing.T) {
	item := &InventoryItem{ID: "DN-0001", Availability: AvailabilityCommitted}

	err := item.TransitionAvailability(AvailabilityUncommitted, nil, time.Now())
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if item.Availability != AvailabilityCommitted {
		t.Errorf("item mutated on illegal transition: %+v", item)
	}
}

func TestWashOnAssign(t *testing.T) {
	if !WashOnAssign(&InventoryItem{Origin: OriginStock}) {
		t.Error("stock items must be washed when assigned")
	}
	if WashOnAssign(&InventoryItem{Origin: OriginProduction}) {
		t.Error("production items are washed during finishing, not on assignment")
	}
}
