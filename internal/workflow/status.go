// Package workflow holds the product review state machine: which reviewer
// action may move a product from which status, and for which role.
package workflow

import (
	"errors"
	"fmt"

	"eie-registry/internal/model"
)

var (
	ErrUnknownAction      = errors.New("unknown status action")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrForbiddenAction    = errors.New("action not allowed for role")
	ErrMotivationRequired = errors.New("motivation is required for this action")
)

type Action string

const (
	ActionSupervised   Action = "supervised"
	ActionWaitApproved Action = "wait-approved"
	ActionApproved     Action = "approved"
	ActionRejected     Action = "rejected"
	ActionRestored     Action = "restored"
)

// Rule describes one reviewer action.
type Rule struct {
	From               []model.ProductStatus
	To                 model.ProductStatus
	Roles              []string
	Privilege          string
	MotivationRequired bool
}

var rules = map[Action]Rule{
	ActionSupervised: {
		From:               []model.ProductStatus{model.StatusUploaded, model.StatusWaitApproved},
		To:                 model.StatusSupervised,
		Roles:              []string{model.RoleInvitaliaL1, model.RoleInvitaliaL2},
		Privilege:          model.PrivProductReview,
		MotivationRequired: true,
	},
	ActionWaitApproved: {
		From:      []model.ProductStatus{model.StatusUploaded, model.StatusSupervised},
		To:        model.StatusWaitApproved,
		Roles:     []string{model.RoleInvitaliaL1, model.RoleInvitaliaL2},
		Privilege: model.PrivProductReview,
	},
	ActionApproved: {
		From:      []model.ProductStatus{model.StatusWaitApproved},
		To:        model.StatusApproved,
		Roles:     []string{model.RoleInvitaliaL2},
		Privilege: model.PrivProductApprove,
	},
	ActionRejected: {
		From:               []model.ProductStatus{model.StatusUploaded, model.StatusSupervised, model.StatusWaitApproved},
		To:                 model.StatusRejected,
		Roles:              []string{model.RoleInvitaliaL1, model.RoleInvitaliaL2},
		Privilege:          model.PrivProductReview,
		MotivationRequired: true,
	},
	ActionRestored: {
		From:               []model.ProductStatus{model.StatusRejected},
		To:                 model.StatusUploaded,
		Roles:              []string{model.RoleInvitaliaL2},
		Privilege:          model.PrivProductRestore,
		MotivationRequired: true,
	},
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := rules[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

func (a Action) Rule() Rule {
	return rules[a]
}

func (r Rule) AllowsFrom(from model.ProductStatus) bool {
	for _, s := range r.From {
		if s == from {
			return true
		}
	}
	return false
}

func (r Rule) PermittedFor(role string) bool {
	for _, code := range r.Roles {
		if code == role {
			return true
		}
	}
	return false
}

// Authorize checks the role and the motivation before any product is touched.
func Authorize(a Action, role, motivation string) error {
	rule, ok := rules[a]
	if !ok {
		return ErrUnknownAction
	}
	if !rule.PermittedFor(role) {
		return fmt.Errorf("%w: %s cannot perform %s", ErrForbiddenAction, role, a)
	}
	if rule.MotivationRequired && motivation == "" {
		return ErrMotivationRequired
	}
	return nil
}

// ValidateTransition checks that a product currently in from may take action a.
func ValidateTransition(a Action, from model.ProductStatus) error {
	rule, ok := rules[a]
	if !ok {
		return ErrUnknownAction
	}
	if !rule.AllowsFrom(from) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, rule.To)
	}
	return nil
}

// AvailableActions lists what role may do to a product in status from, in a
// stable order. The portal uses it to decide which buttons to render.
func AvailableActions(role string, from model.ProductStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionSupervised, ActionWaitApproved, ActionApproved, ActionRejected, ActionRestored} {
		rule := rules[a]
		if rule.PermittedFor(role) && rule.AllowsFrom(from) {
			out = append(out, a)
		}
	}
	return out
}
