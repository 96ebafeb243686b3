package proposal

import (
	"encoding/json"
	"path"
	"regexp"
	"strings"
)

const (
	proposalStart = "[SUGGEST_FAQ_PROPOSAL]"
	proposalEnd   = "[/SUGGEST_FAQ_PROPOSAL]"
	sideStart     = "[CUSTOM_ACTION_REQUEST]"
	sideEnd       = "[/CUSTOM_ACTION_REQUEST]"

	// The model is instructed to emit this literal when no uploaded asset is
	// relevant; values matching it (or the literal "undefined") are treated
	// as absent.
	noAssetPlaceholder = "NO_RELEVANT_ASSET"

	SideActionViewLog = "view_faq_log"
)

var (
	proposalBlock = regexp.MustCompile(regexp.QuoteMeta(proposalStart) + `(?s)(.*?)` + regexp.QuoteMeta(proposalEnd))
	sideBlock     = regexp.MustCompile(regexp.QuoteMeta(sideStart) + `(?s)(.*?)` + regexp.QuoteMeta(sideEnd))

	// "undefined" is not a JSON literal; the model emits it anyway after the
	// optional asset keys. Rewritten post quote-normalization, so keys are
	// double-quoted by the time this runs.
	undefinedValue = regexp.MustCompile(`("(?:imageUrl|documentUrl|documentText)"\s*:\s*)undefined`)
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".docx": true, ".txt": true,
}

// Result is what a single assistant response yields: a side action, a
// proposal, or neither (plain chat text).
type Result struct {
	SideAction string
	Proposal   Proposal
}

// Extract scans raw assistant text for a delimited action payload.
// lastUploadURL is the most recent user upload known to the session; for
// add/update proposals it overrides whatever asset the payload text names,
// since the model frequently repeats stale URLs.
//
// No delimited block at all is not an error: the text is plain chat.
func Extract(raw, lastUploadURL string) (Result, error) {
	if m := sideBlock.FindStringSubmatch(raw); m != nil {
		payload := strings.TrimSpace(m[1])
		var side struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal([]byte(repair(payload)), &side); err != nil {
			return Result{}, &MalformedError{Payload: payload, Err: err}
		}
		return Result{SideAction: side.Action}, nil
	}

	m := proposalBlock.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, nil
	}
	rawPayload := strings.TrimSpace(m[1])

	var fields payloadFields
	if err := json.Unmarshal([]byte(repair(rawPayload)), &fields); err != nil {
		return Result{}, &MalformedError{Payload: rawPayload, Err: err}
	}

	fields.scrubPlaceholders()
	fields.resolveAsset(lastUploadURL)

	p, err := fields.validate()
	if err != nil {
		return Result{}, err
	}
	return Result{Proposal: p}, nil
}

// repair normalizes the common malformations of model-generated JSON, in
// order: stray backticks, single-quoted strings (naive global replacement,
// wrong when a value contains an apostrophe), and the non-literal
// "undefined" after optional asset keys.
func repair(payload string) string {
	payload = strings.ReplaceAll(payload, "`", "")
	payload = strings.ReplaceAll(payload, "'", `"`)
	payload = undefinedValue.ReplaceAllString(payload, "${1}null")
	return payload
}

type payloadFields struct {
	Action          string `json:"action"`
	ID              string `json:"id"`
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	Category        string `json:"category"`
	CategoryName    string `json:"categoryName"`
	OldCategoryName string `json:"oldCategoryName"`
	NewCategoryName string `json:"newCategoryName"`
	Reason          string `json:"reason"`
	ImageURL        string `json:"imageUrl"`
	DocumentURL     string `json:"documentUrl"`
	DocumentText    string `json:"documentText"`
}

func (f *payloadFields) scrubPlaceholders() {
	for _, field := range []*string{&f.ImageURL, &f.DocumentURL, &f.DocumentText} {
		v := strings.TrimSpace(*field)
		if v == noAssetPlaceholder || strings.EqualFold(v, "undefined") {
			*field = ""
		}
	}
}

// resolveAsset treats the freshest user upload as ground truth for
// add/update proposals, overriding the payload's own asset fields.
func (f *payloadFields) resolveAsset(lastUploadURL string) {
	if lastUploadURL == "" {
		return
	}
	if f.Action != string(ActionAdd) && f.Action != string(ActionUpdate) {
		return
	}
	switch ClassifyByExtension(lastUploadURL) {
	case "image":
		f.ImageURL = lastUploadURL
		f.DocumentURL = ""
		f.DocumentText = ""
	case "document":
		f.DocumentURL = lastUploadURL
		f.ImageURL = ""
	}
}

// ClassifyByExtension reports "image", "document", or "" for a file name
// or URL, by extension alone.
func ClassifyByExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case imageExts[ext]:
		return "image"
	case documentExts[ext]:
		return "document"
	default:
		return ""
	}
}

// validate enforces the per-action required fields and fails closed: a
// payload that misses any of them is discarded, never coerced.
func (f *payloadFields) validate() (Proposal, error) {
	switch Action(f.Action) {
	case ActionAdd:
		if err := requireFields(ActionAdd,
			field{"question", f.Question},
			field{"answer", f.Answer},
			field{"category", f.Category},
		); err != nil {
			return nil, err
		}
		return Add{
			Question:     strings.TrimSpace(f.Question),
			Answer:       strings.TrimSpace(f.Answer),
			Category:     strings.TrimSpace(f.Category),
			ImageURL:     f.ImageURL,
			DocumentURL:  f.DocumentURL,
			DocumentText: f.DocumentText,
		}, nil
	case ActionUpdate:
		if err := requireFields(ActionUpdate,
			field{"id", f.ID},
			field{"question", f.Question},
			field{"answer", f.Answer},
			field{"category", f.Category},
		); err != nil {
			return nil, err
		}
		return Update{
			ID:           strings.TrimSpace(f.ID),
			Question:     strings.TrimSpace(f.Question),
			Answer:       strings.TrimSpace(f.Answer),
			Category:     strings.TrimSpace(f.Category),
			ImageURL:     f.ImageURL,
			DocumentURL:  f.DocumentURL,
			DocumentText: f.DocumentText,
		}, nil
	case ActionDelete:
		if err := requireFields(ActionDelete, field{"id", f.ID}); err != nil {
			return nil, err
		}
		return Delete{ID: strings.TrimSpace(f.ID), Reason: strings.TrimSpace(f.Reason)}, nil
	case ActionDeleteCategory:
		if err := requireFields(ActionDeleteCategory, field{"categoryName", f.CategoryName}); err != nil {
			return nil, err
		}
		return DeleteCategory{CategoryName: strings.TrimSpace(f.CategoryName)}, nil
	case ActionRenameCategory:
		if err := requireFields(ActionRenameCategory,
			field{"oldCategoryName", f.OldCategoryName},
			field{"newCategoryName", f.NewCategoryName},
		); err != nil {
			return nil, err
		}
		oldName := strings.TrimSpace(f.OldCategoryName)
		newName := strings.TrimSpace(f.NewCategoryName)
		if oldName == newName {
			return nil, shapeError(ActionRenameCategory, "oldCategoryName and newCategoryName must differ")
		}
		return RenameCategory{OldCategoryName: oldName, NewCategoryName: newName}, nil
	default:
		return nil, shapeError(Action(f.Action), "unknown action")
	}
}

type field struct {
	name  string
	value string
}

func requireFields(action Action, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return shapeError(action, "missing required field "+f.name)
		}
	}
	return nil
}

func shapeError(action Action, detail string) error {
	if action == "" {
		action = "(none)"
	}
	return &shapeErr{action: action, detail: detail}
}

type shapeErr struct {
	action Action
	detail string
}

func (e *shapeErr) Error() string {
	return string(e.action) + ": " + e.detail
}

func (e *shapeErr) Unwrap() error { return ErrInvalidShape }
