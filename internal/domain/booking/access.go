package booking

import (
	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
)

// Action is an operation an actor may request on a booking. The access
// layer answers only "may this actor touch this booking this way"; the
// transition table decides which edge a role may take.
type Action string

const (
	ActionRead               Action = "read"
	ActionTransition         Action = "transition"
	ActionSubmitQuote        Action = "submit_quote"
	ActionSubmitPaymentProof Action = "submit_payment_proof"
	ActionConfirmPayment     Action = "confirm_payment"
	ActionOverridePayment    Action = "override_payment"
	ActionReview             Action = "review"
	ActionAttachPhoto        Action = "attach_photo"
)

// clientActions and technicianActions list what each party may do on a
// booking it belongs to. Admins read anything and perform the payment
// override, but never ordinary party transitions.
var clientActions = map[Action]bool{
	ActionRead:               true,
	ActionTransition:         true,
	ActionSubmitPaymentProof: true,
	ActionReview:             true,
	ActionAttachPhoto:        true,
}

var technicianActions = map[Action]bool{
	ActionRead:           true,
	ActionTransition:     true,
	ActionSubmitQuote:    true,
	ActionConfirmPayment: true,
	ActionReview:         true,
}

// Authorize decides whether the actor may perform the action on the
// booking. It is a pure predicate with no side effects.
func Authorize(actorID uuid.UUID, role ActorRole, b *Booking, action Action) error {
	switch role {
	case RoleClient:
		if b.ClientID() != actorID {
			return domain.NewForbiddenError("booking does not belong to this client").
				WithDetail("actor_role", role.String())
		}
		if !clientActions[action] {
			return domain.NewForbiddenError("clients may not perform this action").
				WithDetail("actor_role", role.String()).
				WithDetail("action", string(action))
		}
		return nil

	case RoleTechnician:
		if b.TechnicianID() != actorID {
			return domain.NewForbiddenError("booking is not assigned to this technician").
				WithDetail("actor_role", role.String())
		}
		if !technicianActions[action] {
			return domain.NewForbiddenError("technicians may not perform this action").
				WithDetail("actor_role", role.String()).
				WithDetail("action", string(action))
		}
		return nil

	case RoleAdmin:
		if action == ActionRead || action == ActionOverridePayment {
			return nil
		}
		return domain.NewForbiddenError("admins may not perform ordinary booking transitions").
			WithDetail("actor_role", role.String()).
			WithDetail("action", string(action))

	default:
		return domain.NewForbiddenError("unrecognized actor role").
			WithDetail("actor_role", role.String())
	}
}
