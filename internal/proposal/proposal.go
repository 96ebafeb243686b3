// Package proposal turns free-form assistant text into typed, user-confirmable
// knowledge-base mutations.
package proposal

import (
	"errors"
	"fmt"
)

type Action string

const (
	ActionAdd            Action = "add"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionDeleteCategory Action = "deleteCategory"
	ActionRenameCategory Action = "renameCategory"
)

// ErrInvalidShape marks a payload that parsed but is missing required fields
// for its action.
var ErrInvalidShape = errors.New("invalid proposal shape")

// MalformedError reports a payload that could not be decoded even after the
// repair pass. Payload carries the original delimited text for diagnostics.
type MalformedError struct {
	Payload string
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed proposal payload: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Proposal is a closed set: exactly one concrete type per action kind, each
// carrying only the fields that action requires.
type Proposal interface {
	Action() Action
	Summary() string
	sealed()
}

type Add struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
	DocumentText string `json:"document_text,omitempty"`
}

func (p Add) Action() Action { return ActionAdd }
func (p Add) Summary() string {
	return fmt.Sprintf("add FAQ %q to category %q", p.Question, p.Category)
}
func (p Add) sealed() {}

type Update struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
	DocumentText string `json:"document_text,omitempty"`
}

func (p Update) Action() Action { return ActionUpdate }
func (p Update) Summary() string {
	return fmt.Sprintf("update FAQ %s (%q)", p.ID, p.Question)
}
func (p Update) sealed() {}

type Delete struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

func (p Delete) Action() Action { return ActionDelete }
func (p Delete) Summary() string {
	if p.Reason != "" {
		return fmt.Sprintf("delete FAQ %s (%s)", p.ID, p.Reason)
	}
	return fmt.Sprintf("delete FAQ %s", p.ID)
}
func (p Delete) sealed() {}

type DeleteCategory struct {
	CategoryName string `json:"category_name"`
}

func (p DeleteCategory) Action() Action { return ActionDeleteCategory }
func (p DeleteCategory) Summary() string {
	return fmt.Sprintf("delete category %q and every FAQ in it", p.CategoryName)
}
func (p DeleteCategory) sealed() {}

type RenameCategory struct {
	OldCategoryName string `json:"old_category_name"`
	NewCategoryName string `json:"new_category_name"`
}

func (p RenameCategory) Action() Action { return ActionRenameCategory }
func (p RenameCategory) Summary() string {
	return fmt.Sprintf("rename category %q to %q", p.OldCategoryName, p.NewCategoryName)
}
func (p RenameCategory) sealed() {}
