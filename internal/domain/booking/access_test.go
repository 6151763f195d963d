package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homefix-app/service-booking/internal/domain"
)

func TestAuthorize_PartyScoping(t *testing.T) {
	bk := bookingInStatus(t, StatusPending)
	stranger := uuid.New()

	// Participants touch their own booking.
	require.NoError(t, Authorize(bk.ClientID(), RoleClient, bk, ActionRead))
	require.NoError(t, Authorize(bk.TechnicianID(), RoleTechnician, bk, ActionRead))

	// A different user with the same role does not.
	err := Authorize(stranger, RoleClient, bk, ActionRead)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))

	err = Authorize(stranger, RoleTechnician, bk, ActionTransition)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}

func TestAuthorize_RoleActionMatrix(t *testing.T) {
	bk := bookingInStatus(t, StatusPending)

	tests := []struct {
		name    string
		actorID uuid.UUID
		role    ActorRole
		action  Action
		allowed bool
	}{
		{"client submits payment proof", bk.ClientID(), RoleClient, ActionSubmitPaymentProof, true},
		{"client attaches photo", bk.ClientID(), RoleClient, ActionAttachPhoto, true},
		{"client reviews", bk.ClientID(), RoleClient, ActionReview, true},
		{"client cannot quote", bk.ClientID(), RoleClient, ActionSubmitQuote, false},
		{"client cannot confirm payment", bk.ClientID(), RoleClient, ActionConfirmPayment, false},
		{"client cannot override payment", bk.ClientID(), RoleClient, ActionOverridePayment, false},
		{"technician quotes", bk.TechnicianID(), RoleTechnician, ActionSubmitQuote, true},
		{"technician confirms payment", bk.TechnicianID(), RoleTechnician, ActionConfirmPayment, true},
		{"technician reviews", bk.TechnicianID(), RoleTechnician, ActionReview, true},
		{"technician cannot submit proof", bk.TechnicianID(), RoleTechnician, ActionSubmitPaymentProof, false},
		{"technician cannot attach photo", bk.TechnicianID(), RoleTechnician, ActionAttachPhoto, false},
		{"technician cannot override payment", bk.TechnicianID(), RoleTechnician, ActionOverridePayment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actorID, tt.role, bk, tt.action)
			if tt.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
			}
		})
	}
}

// Admins are not a party to any booking: they read everything and run the
// payment override, nothing else.
func TestAuthorize_AdminScope(t *testing.T) {
	bk := bookingInStatus(t, StatusPending)
	adminID := uuid.New()

	require.NoError(t, Authorize(adminID, RoleAdmin, bk, ActionRead))
	require.NoError(t, Authorize(adminID, RoleAdmin, bk, ActionOverridePayment))

	for _, action := range []Action{ActionTransition, ActionSubmitQuote, ActionSubmitPaymentProof, ActionConfirmPayment, ActionReview, ActionAttachPhoto} {
		err := Authorize(adminID, RoleAdmin, bk, action)
		require.Error(t, err, "action %s", action)
		assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
	}
}

func TestAuthorize_UnknownRole(t *testing.T) {
	bk := bookingInStatus(t, StatusPending)

	err := Authorize(bk.ClientID(), ActorRole("support"), bk, ActionRead)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))

	// RoleSystem is internal and never carried by a request.
	err = Authorize(bk.ClientID(), RoleSystem, bk, ActionRead)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}
