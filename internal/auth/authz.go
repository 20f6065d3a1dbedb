package auth

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the acting principal lacks ownership
// of the resource or the role the action requires.
var ErrForbidden = errors.New("forbidden")

type Resource string

const (
	ResourceCart     Resource = "cart"
	ResourceOrder    Resource = "order"
	ResourceProduct  Resource = "product"
	ResourceReview   Resource = "review"
	ResourcePurchase Resource = "purchase"
	ResourceUser     Resource = "user"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionCancel Action = "cancel"
	ActionList   Action = "list"
	ActionManage Action = "manage"
)

// adminOnly actions are never granted through ownership.
var adminOnly = map[Action]bool{
	ActionManage: true,
}

// Authorize is the single permission check for every orchestrator
// entry point: may principal p perform action on the resource owned by
// ownerSubject? Admins may do anything; owners may do anything except
// admin-only actions. An empty ownerSubject denotes a shared resource
// readable by any authenticated principal.
func Authorize(p Principal, resource Resource, action Action, ownerSubject string) error {
	if p.IsAdmin() {
		return nil
	}
	if adminOnly[action] {
		return fmt.Errorf("%w: %s %s requires the admin role", ErrForbidden, action, resource)
	}
	if ownerSubject == "" || ownerSubject == p.Subject {
		return nil
	}
	return fmt.Errorf("%w: %s does not own this %s", ErrForbidden, p.Subject, resource)
}
