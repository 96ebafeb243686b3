package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrFaqNotFound       = errors.New("faq not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTurnNotFound      = errors.New("turn not found")
	ErrMessageEmpty      = errors.New("message content is empty")
	ErrNoPendingProposal = errors.New("no pending proposal")
	ErrAssetUpload       = errors.New("asset upload failed")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)
