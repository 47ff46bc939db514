package workflow

import (
	"testing"

	"eie-registry/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, s := range []string{"supervised", "wait-approved", "approved", "rejected", "restored"} {
		a, err := ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, Action(s), a)
	}

	_, err := ParseAction("deleted")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		action Action
		from   model.ProductStatus
		ok     bool
	}{
		{ActionSupervised, model.StatusUploaded, true},
		{ActionSupervised, model.StatusWaitApproved, true},
		{ActionSupervised, model.StatusApproved, false},
		{ActionWaitApproved, model.StatusUploaded, true},
		{ActionWaitApproved, model.StatusSupervised, true},
		{ActionWaitApproved, model.StatusRejected, false},
		{ActionApproved, model.StatusWaitApproved, true},
		{ActionApproved, model.StatusUploaded, false},
		{ActionApproved, model.StatusSupervised, false},
		{ActionRejected, model.StatusUploaded, true},
		{ActionRejected, model.StatusSupervised, true},
		{ActionRejected, model.StatusWaitApproved, true},
		{ActionRejected, model.StatusApproved, false},
		{ActionRejected, model.StatusRejected, false},
		{ActionRestored, model.StatusRejected, true},
		{ActionRestored, model.StatusApproved, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.action)+"_from_"+string(tc.from), func(t *testing.T) {
			err := ValidateTransition(tc.action, tc.from)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(ActionWaitApproved, model.RoleInvitaliaL1, ""))
	assert.NoError(t, Authorize(ActionApproved, model.RoleInvitaliaL2, ""))
	assert.NoError(t, Authorize(ActionRestored, model.RoleInvitaliaL2, "documents fixed"))

	assert.ErrorIs(t, Authorize(ActionApproved, model.RoleInvitaliaL1, ""), ErrForbiddenAction)
	assert.ErrorIs(t, Authorize(ActionRestored, model.RoleInvitaliaL1, "x"), ErrForbiddenAction)
	assert.ErrorIs(t, Authorize(ActionSupervised, model.RoleProducer, "x"), ErrForbiddenAction)
	assert.ErrorIs(t, Authorize(ActionRejected, model.RoleInvitaliaL1, ""), ErrMotivationRequired)
	assert.ErrorIs(t, Authorize(Action("nope"), model.RoleInvitaliaL2, ""), ErrUnknownAction)
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t,
		[]Action{ActionSupervised, ActionWaitApproved, ActionRejected},
		AvailableActions(model.RoleInvitaliaL1, model.StatusUploaded))
	assert.Equal(t,
		[]Action{ActionSupervised, ActionApproved, ActionRejected},
		AvailableActions(model.RoleInvitaliaL2, model.StatusWaitApproved))
	assert.Equal(t,
		[]Action{ActionRestored},
		AvailableActions(model.RoleInvitaliaL2, model.StatusRejected))
	assert.Empty(t, AvailableActions(model.RoleInvitaliaL1, model.StatusRejected))
	assert.Empty(t, AvailableActions(model.RoleProducer, model.StatusUploaded))
	assert.Empty(t, AvailableActions(model.RoleInvitaliaL2, model.StatusApproved))
}

func TestSuccessMessageKey(t *testing.T) {
	uploaded := []model.ProductStatus{model.StatusUploaded, model.StatusUploaded}
	mixed := []model.ProductStatus{model.StatusUploaded, model.StatusSupervised}

	assert.Equal(t, "invitalia.rejected", SuccessMessageKey(ActionRejected, model.RoleInvitaliaL1, uploaded))
	assert.Equal(t, "invitalia.rejected.mixed", SuccessMessageKey(ActionRejected, model.RoleInvitaliaL1, mixed))
	assert.Equal(t, "invitalia_admin.approved", SuccessMessageKey(ActionApproved, model.RoleInvitaliaL2, []model.ProductStatus{model.StatusWaitApproved}))
	assert.Equal(t, "invitalia_admin.restored", SuccessMessageKey(ActionRestored, model.RoleInvitaliaL2, nil))
}
