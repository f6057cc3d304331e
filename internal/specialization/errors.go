package specialization

import "errors"

var (
	// ErrRoleNotFound indicates the referenced role id is not registered.
	ErrRoleNotFound = errors.New("role not found")

	// ErrAgentNotFound indicates the agent id cannot be resolved by the host.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrSpecializationNotFound indicates no specialization exists for the
	// agent id.
	ErrSpecializationNotFound = errors.New("specialization not found")

	// ErrRoleApplicationFailed indicates the host agent refused a role
	// side-effect during assignment; the store is left untouched.
	ErrRoleApplicationFailed = errors.New("role application failed")

	// ErrInvalidSpecialization indicates a specialization was constructed
	// with an empty agent or role id.
	ErrInvalidSpecialization = errors.New("invalid specialization")
)
