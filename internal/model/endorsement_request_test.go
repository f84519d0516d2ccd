package model

import (
	"errors"
	"testing"

	"github.com/VannaSem/SevaSign/internal/constant"
)

func TestGuardTransition(t *testing.T) {
	requester := Actor{ID: "user-1", Role: constant.UserRoleCustomer}
	signatory := Actor{ID: "user-2", Role: constant.UserRoleAuthorizedSignatory}
	shopOwner := Actor{ID: "user-3", Role: constant.UserRoleShopOwner}
	stranger := Actor{ID: "user-4", Role: constant.UserRoleCustomer}

	request := func(status constant.EndorsementStatus) EndorsementRequest {
		return EndorsementRequest{RequesterID: requester.ID, Status: status}
	}

	tests := []struct {
		name     string
		from     constant.EndorsementStatus
		to       constant.EndorsementStatus
		actor    Actor
		expected error
	}{
		{"requester cancels pending", constant.EndorsementStatusPending, constant.EndorsementStatusCancelled, requester, nil},
		{"signatory accepts pending", constant.EndorsementStatusPending, constant.EndorsementStatusAccepted, signatory, nil},
		{"shop owner accepts pending", constant.EndorsementStatusPending, constant.EndorsementStatusAccepted, shopOwner, nil},
		{"signatory rejects pending", constant.EndorsementStatusPending, constant.EndorsementStatusRejected, signatory, nil},
		{"requester cancels accepted", constant.EndorsementStatusAccepted, constant.EndorsementStatusCancelled, requester, nil},
		{"customer accepts pending", constant.EndorsementStatusPending, constant.EndorsementStatusAccepted, stranger, ErrActorNotAuthorized},
		{"customer rejects pending", constant.EndorsementStatusPending, constant.EndorsementStatusRejected, stranger, ErrActorNotAuthorized},
		{"stranger cancels pending", constant.EndorsementStatusPending, constant.EndorsementStatusCancelled, stranger, ErrActorNotAuthorized},
		{"signatory cancels pending", constant.EndorsementStatusPending, constant.EndorsementStatusCancelled, signatory, ErrActorNotAuthorized},
		{"stranger cancels accepted", constant.EndorsementStatusAccepted, constant.EndorsementStatusCancelled, stranger, ErrActorNotAuthorized},
		{"accept an accepted request", constant.EndorsementStatusAccepted, constant.EndorsementStatusAccepted, signatory, ErrTransitionNotAllowed},
		{"reject an accepted request", constant.EndorsementStatusAccepted, constant.EndorsementStatusRejected, signatory, ErrTransitionNotAllowed},
		{"signed is not a user event", constant.EndorsementStatusAccepted, constant.EndorsementStatusSigned, signatory, ErrTransitionNotAllowed},
		{"cancel a rejected request", constant.EndorsementStatusRejected, constant.EndorsementStatusCancelled, requester, ErrTransitionNotAllowed},
		{"accept a cancelled request", constant.EndorsementStatusCancelled, constant.EndorsementStatusAccepted, signatory, ErrTransitionNotAllowed},
		{"cancel a signed request", constant.EndorsementStatusSigned, constant.EndorsementStatusCancelled, requester, ErrTransitionNotAllowed},
		{"accept a signed request", constant.EndorsementStatusSigned, constant.EndorsementStatusAccepted, signatory, ErrTransitionNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := request(tt.from).GuardTransition(tt.to, tt.actor)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestGuardApply(t *testing.T) {
	for _, status := range []constant.EndorsementStatus{
		constant.EndorsementStatusPending,
		constant.EndorsementStatusRejected,
		constant.EndorsementStatusCancelled,
		constant.EndorsementStatusSigned,
	} {
		er := EndorsementRequest{Status: status}
		if err := er.GuardApply(); !errors.Is(err, ErrInvalidStateForApply) {
			t.Errorf("status %s: expected ErrInvalidStateForApply, got %v", status, err)
		}
	}

	er := EndorsementRequest{Status: constant.EndorsementStatusAccepted}
	if err := er.GuardApply(); err != nil {
		t.Errorf("accepted request should pass the apply guard, got %v", err)
	}
}

func TestSignedBy(t *testing.T) {
	acceptor := "signatory-9"

	er := EndorsementRequest{RequesterID: "requester-1", AcceptedByID: &acceptor}
	if got := er.SignedBy(); got != acceptor {
		t.Errorf("expected %s, got %s", acceptor, got)
	}

	er.AcceptedByID = nil
	if got := er.SignedBy(); got != "requester-1" {
		t.Errorf("expected fallback to requester, got %s", got)
	}
}
