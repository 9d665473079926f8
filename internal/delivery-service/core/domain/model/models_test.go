package model

import "testing"

func TestCanTransitionOnlyMovesForwardOneStep(t *testing.T) {
	allowed := map[[2]string]bool{
		{DeliveryAssigned, DeliveryPickedUp}:   true,
		{DeliveryPickedUp, DeliveryInTransit}:  true,
		{DeliveryInTransit, DeliveryDelivered}: true,
	}

	statuses := []string{DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestDeliveredIsTerminal(t *testing.T) {
	for _, to := range []string{DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered} {
		if CanTransition(DeliveryDelivered, to) {
			t.Errorf("delivered must not transition to %q", to)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered} {
		if !ValidStatus(s) {
			t.Errorf("%q must be a valid status", s)
		}
	}
	for _, s := range []string{"", "cancelled", "ASSIGNED", "done"} {
		if ValidStatus(s) {
			t.Errorf("%q must not be a valid status", s)
		}
	}
}
