package model

import "errors"

var (
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrAlreadyPending      = errors.New("subject already has a pending request for this activity")
	ErrInvalidState        = errors.New("join request is not in a state that allows this operation")
	ErrNotRequestOwner     = errors.New("only the requesting subject may withdraw the request")
)
