package constant

// EndorsementStatus is the closed set of reachable request states.
// The legacy schema also declared "pending_verification" and "approved";
// no transition ever produced them, so they are intentionally not modeled.
type EndorsementStatus string

const (
	EndorsementStatusPending   EndorsementStatus = "pending"
	EndorsementStatusAccepted  EndorsementStatus = "accepted"
	EndorsementStatusRejected  EndorsementStatus = "rejected"
	EndorsementStatusSigned    EndorsementStatus = "signed"
	EndorsementStatusCancelled EndorsementStatus = "cancelled"
)

func (s EndorsementStatus) IsTerminal() bool {
	switch s {
	case EndorsementStatusRejected, EndorsementStatusSigned, EndorsementStatusCancelled:
		return true
	}
	return false
}

func (s EndorsementStatus) Valid() bool {
	switch s {
	case EndorsementStatusPending, EndorsementStatusAccepted, EndorsementStatusRejected,
		EndorsementStatusSigned, EndorsementStatusCancelled:
		return true
	}
	return false
}

// AuditAction is the uppercase verb recorded on the audit trail,
// one entry per successful state change.
type AuditAction string

const (
	AuditActionCreated   AuditAction = "CREATED"
	AuditActionAccepted  AuditAction = "ACCEPTED"
	AuditActionRejected  AuditAction = "REJECTED"
	AuditActionCancelled AuditAction = "CANCELLED"
	AuditActionSigned    AuditAction = "SIGNED"
)

// AuditActionForStatus maps a target status to the audit verb its
// transition records.
func AuditActionForStatus(s EndorsementStatus) AuditAction {
	switch s {
	case EndorsementStatusAccepted:
		return AuditActionAccepted
	case EndorsementStatusRejected:
		return AuditActionRejected
	case EndorsementStatusCancelled:
		return AuditActionCancelled
	case EndorsementStatusSigned:
		return AuditActionSigned
	default:
		return AuditActionCreated
	}
}

// RequesterType distinguishes which side of the marketplace filed the request.
type RequesterType string

const (
	RequesterTypeCustomer  RequesterType = "customer"
	RequesterTypeShopOwner RequesterType = "shop_owner"
)
