package model

import (
	"errors"
	"time"

	"github.com/VannaSem/SevaSign/internal/constant"
)

var (
	// ErrTransitionNotAllowed means the requested status change has no edge
	// in the lifecycle graph, e.g. any transition out of a terminal state.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	// ErrActorNotAuthorized means the edge exists but the acting user lacks
	// the role or ownership it requires.
	ErrActorNotAuthorized = errors.New("actor not authorized for this transition")
	// ErrInvalidStateForApply means endorsement was attempted on a request
	// that is not in accepted state.
	ErrInvalidStateForApply = errors.New("request is not in accepted state")
)

// EndorsementRequest is the root entity of the signing workflow. Requester
// details are an immutable snapshot captured at creation, they do not follow
// the live user profile. Rows are never deleted, the audit trail references
// them forever.
type EndorsementRequest struct {
	BaseModel
	// RefCode is a short human-facing reference, also used by the optional
	// verification QR on the signed output.
	RefCode string `gorm:"type:varchar(21);not null;uniqueIndex" json:"refCode"`

	RequesterID   string                 `gorm:"type:text;not null;index" json:"requesterId"`
	RequesterType constant.RequesterType `gorm:"type:varchar(30);not null" json:"requesterType"`

	RequesterName    string `gorm:"type:text;not null" json:"requesterName"`
	RequesterMobile  string `gorm:"type:text;not null" json:"requesterMobile"`
	RequesterAddress string `gorm:"type:text;not null" json:"requesterAddress"`
	ShopNumber       string `gorm:"type:text" json:"shopNumber,omitempty"`

	DocumentFileID string `gorm:"type:text;not null" json:"documentFileId"`
	DocumentFile   File   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Purpose          string `gorm:"type:text;not null" json:"purpose"`
	RequireSignature bool   `gorm:"type:boolean;not null;default:false" json:"requireSignature"`
	RequireSeal      bool   `gorm:"type:boolean;not null;default:false" json:"requireSeal"`

	Status          constant.EndorsementStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason *string                    `gorm:"type:text" json:"rejectionReason,omitempty"`

	// AcceptedByID records which signatory accepted the request. The signed
	// transition credits this user rather than looking up an arbitrary
	// authority account.
	AcceptedByID *string `gorm:"type:text" json:"acceptedById,omitempty"`

	SignedFileID *string    `gorm:"type:text" json:"signedFileId,omitempty"`
	SignedFile   *File      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	SignedByID   *string    `gorm:"type:text" json:"signedById,omitempty"`
	SignedAt     *time.Time `gorm:"type:timestamptz" json:"signedAt,omitempty"`

	// Version backs the compare-and-swap on status transitions so that
	// a losing concurrent accept/reject fails instead of overwriting.
	Version int `gorm:"type:integer;not null;default:0" json:"-"`

	Requester User `gorm:"foreignKey:RequesterID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (er EndorsementRequest) TableName() string {
	return "endorsement_requests"
}

// Actor is the user attempting a transition.
type Actor struct {
	ID   string
	Role constant.UserRole
}

// GuardTransition validates a user-driven status change against the
// lifecycle table:
//
//	pending  -> cancelled  requester only
//	pending  -> accepted   signatory role
//	pending  -> rejected   signatory role
//	accepted -> cancelled  requester only
//
// The internal accepted -> signed edge is not reachable here, see
// GuardApply. rejected, cancelled and signed are terminal.
func (er EndorsementRequest) GuardTransition(to constant.EndorsementStatus, actor Actor) error {
	switch er.Status {
	case constant.EndorsementStatusPending:
		switch to {
		case constant.EndorsementStatusCancelled:
			return er.requireRequester(actor)
		case constant.EndorsementStatusAccepted, constant.EndorsementStatusRejected:
			return er.requireSignatory(actor)
		}
	case constant.EndorsementStatusAccepted:
		if to == constant.EndorsementStatusCancelled {
			return er.requireRequester(actor)
		}
	}

	return ErrTransitionNotAllowed
}

// GuardApply validates the precondition of the endorsement applier.
func (er EndorsementRequest) GuardApply() error {
	if er.Status != constant.EndorsementStatusAccepted {
		return ErrInvalidStateForApply
	}
	return nil
}

// SignedBy resolves the user credited on the signed transition: the
// signatory who accepted the request, falling back to the requester when
// no acceptor was recorded.
func (er EndorsementRequest) SignedBy() string {
	if er.AcceptedByID != nil && *er.AcceptedByID != "" {
		return *er.AcceptedByID
	}
	return er.RequesterID
}

func (er EndorsementRequest) requireRequester(actor Actor) error {
	if actor.ID != er.RequesterID {
		return ErrActorNotAuthorized
	}
	return nil
}

func (er EndorsementRequest) requireSignatory(actor Actor) error {
	if !actor.Role.CanEndorse() {
		return ErrActorNotAuthorized
	}
	return nil
}
