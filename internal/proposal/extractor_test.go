package proposal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainTextYieldsNothing(t *testing.T) {
	res, err := Extract("Printers live on the second floor.", "")
	require.NoError(t, err)
	assert.Nil(t, res.Proposal)
	assert.Empty(t, res.SideAction)
}

func TestExtractWellFormedAdd(t *testing.T) {
	raw := `Sure, I can add that.
[SUGGEST_FAQ_PROPOSAL]{"action":"add","question":"How do I reset my password?","answer":"Use the self-service portal.","category":"Accounts","imageUrl":"NO_RELEVANT_ASSET","documentUrl":"NO_RELEVANT_ASSET","documentText":"NO_RELEVANT_ASSET"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "")
	require.NoError(t, err)
	require.NotNil(t, res.Proposal)

	add, ok := res.Proposal.(Add)
	require.True(t, ok)
	assert.Equal(t, "How do I reset my password?", add.Question)
	assert.Equal(t, "Use the self-service portal.", add.Answer)
	assert.Equal(t, "Accounts", add.Category)
	assert.Empty(t, add.ImageURL)
	assert.Empty(t, add.DocumentURL)
	assert.Empty(t, add.DocumentText)
}

func TestExtractIsIdempotent(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"abc-123","reason":"duplicate"}[/SUGGEST_FAQ_PROPOSAL]`

	first, err := Extract(raw, "")
	require.NoError(t, err)
	second, err := Extract(raw, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractSingleQuotedPayload(t *testing.T) {
	singleQuoted := `[SUGGEST_FAQ_PROPOSAL]{'action':'delete','id':'abc-123','reason':'duplicate'}[/SUGGEST_FAQ_PROPOSAL]`
	doubleQuoted := `[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"abc-123","reason":"duplicate"}[/SUGGEST_FAQ_PROPOSAL]`

	fromSingle, err := Extract(singleQuoted, "")
	require.NoError(t, err)
	fromDouble, err := Extract(doubleQuoted, "")
	require.NoError(t, err)
	assert.Equal(t, fromDouble.Proposal, fromSingle.Proposal)

	del, ok := fromSingle.Proposal.(Delete)
	require.True(t, ok)
	assert.Equal(t, "abc-123", del.ID)
	assert.Equal(t, "duplicate", del.Reason)
}

func TestExtractRepairsBackticksAndUndefined(t *testing.T) {
	raw := "[SUGGEST_FAQ_PROPOSAL]```{'action':'add','question':'Q','answer':'A','category':'C','imageUrl':undefined,'documentUrl':undefined,'documentText':undefined}```[/SUGGEST_FAQ_PROPOSAL]"

	res, err := Extract(raw, "")
	require.NoError(t, err)

	add, ok := res.Proposal.(Add)
	require.True(t, ok)
	assert.Equal(t, "Q", add.Question)
	assert.Empty(t, add.ImageURL)
	assert.Empty(t, add.DocumentURL)
}

func TestExtractOnlyFirstBlockHonored(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"first"}[/SUGGEST_FAQ_PROPOSAL]
[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"second"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "")
	require.NoError(t, err)
	del, ok := res.Proposal.(Delete)
	require.True(t, ok)
	assert.Equal(t, "first", del.ID)
}

func TestExtractMalformedPayload(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"add","question":[/SUGGEST_FAQ_PROPOSAL]`

	_, err := Extract(raw, "")
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Payload, `"question"`)
}

func TestExtractPlaceholderScrubbing(t *testing.T) {
	for _, placeholder := range []string{"NO_RELEVANT_ASSET", "undefined", "Undefined"} {
		raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"update","id":"x","question":"Q","answer":"A","category":"C","imageUrl":"` + placeholder + `"}[/SUGGEST_FAQ_PROPOSAL]`
		res, err := Extract(raw, "")
		require.NoError(t, err, placeholder)
		upd, ok := res.Proposal.(Update)
		require.True(t, ok)
		assert.Empty(t, upd.ImageURL, placeholder)
	}
}

func TestExtractResolvesImageUpload(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"add","question":"Q","answer":"A","category":"C","imageUrl":"http://stale/old.png","documentUrl":"http://stale/old.pdf","documentText":"stale"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "http://assets/faqdesk-assets/shot.png")
	require.NoError(t, err)

	add, ok := res.Proposal.(Add)
	require.True(t, ok)
	assert.Equal(t, "http://assets/faqdesk-assets/shot.png", add.ImageURL)
	assert.Empty(t, add.DocumentURL)
	assert.Empty(t, add.DocumentText)
}

func TestExtractResolvesDocumentUpload(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"update","id":"x","question":"Q","answer":"A","category":"C","imageUrl":"http://stale/old.png","documentText":"extracted earlier"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "http://assets/faqdesk-assets/manual.pdf")
	require.NoError(t, err)

	upd, ok := res.Proposal.(Update)
	require.True(t, ok)
	assert.Equal(t, "http://assets/faqdesk-assets/manual.pdf", upd.DocumentURL)
	assert.Empty(t, upd.ImageURL)
	// A document upload overrides the URL but keeps whatever text the
	// payload carried.
	assert.Equal(t, "extracted earlier", upd.DocumentText)
}

func TestExtractUploadIgnoredForDelete(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"abc"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "http://assets/faqdesk-assets/shot.png")
	require.NoError(t, err)
	_, ok := res.Proposal.(Delete)
	assert.True(t, ok)
}

func TestExtractUnknownUploadExtensionLeavesPayload(t *testing.T) {
	raw := `[SUGGEST_FAQ_PROPOSAL]{"action":"add","question":"Q","answer":"A","category":"C","imageUrl":"http://original/pic.png"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "http://assets/faqdesk-assets/archive.zip")
	require.NoError(t, err)
	add, ok := res.Proposal.(Add)
	require.True(t, ok)
	assert.Equal(t, "http://original/pic.png", add.ImageURL)
}

func TestExtractShapeValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"add missing question", `{"action":"add","answer":"A","category":"C"}`},
		{"add missing answer", `{"action":"add","question":"Q","category":"C"}`},
		{"add missing category", `{"action":"add","question":"Q","answer":"A"}`},
		{"update missing id", `{"action":"update","question":"Q","answer":"A","category":"C"}`},
		{"delete missing id", `{"action":"delete","reason":"stale"}`},
		{"deleteCategory missing name", `{"action":"deleteCategory"}`},
		{"renameCategory missing new", `{"action":"renameCategory","oldCategoryName":"Hardware"}`},
		{"renameCategory same names", `{"action":"renameCategory","oldCategoryName":"Hardware","newCategoryName":"Hardware"}`},
		{"unknown action", `{"action":"merge","id":"x"}`},
		{"empty action", `{"id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "[SUGGEST_FAQ_PROPOSAL]" + tt.payload + "[/SUGGEST_FAQ_PROPOSAL]"
			_, err := Extract(raw, "")
			assert.True(t, errors.Is(err, ErrInvalidShape), "got %v", err)
		})
	}
}

func TestExtractSideActionShortCircuits(t *testing.T) {
	raw := `Here you go.
[CUSTOM_ACTION_REQUEST]{"action":"view_faq_log"}[/CUSTOM_ACTION_REQUEST]
[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"abc"}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "")
	require.NoError(t, err)
	assert.Equal(t, SideActionViewLog, res.SideAction)
	assert.Nil(t, res.Proposal)
}

func TestExtractEndToEndDeleteExample(t *testing.T) {
	raw := `I found a duplicate entry. [SUGGEST_FAQ_PROPOSAL]{'action':'delete','id':'abc-123','reason':'duplicate'}[/SUGGEST_FAQ_PROPOSAL]`

	res, err := Extract(raw, "")
	require.NoError(t, err)
	assert.Equal(t, Delete{ID: "abc-123", Reason: "duplicate"}, res.Proposal)
}

func TestClassifyByExtension(t *testing.T) {
	assert.Equal(t, "image", ClassifyByExtension("a/b/photo.JPG"))
	assert.Equal(t, "image", ClassifyByExtension("icon.svg"))
	assert.Equal(t, "document", ClassifyByExtension("http://host/bucket/manual.pdf"))
	assert.Equal(t, "document", ClassifyByExtension("notes.TXT"))
	assert.Equal(t, "", ClassifyByExtension("archive.zip"))
	assert.Equal(t, "", ClassifyByExtension("noextension"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	proposals := []Proposal{
		Add{Question: "Q", Answer: "A", Category: "C", ImageURL: "http://x/i.png"},
		Update{ID: "id-1", Question: "Q", Answer: "A", Category: "C"},
		Delete{ID: "id-2", Reason: "stale"},
		DeleteCategory{CategoryName: "Hardware"},
		RenameCategory{OldCategoryName: "Printer", NewCategoryName: "Printers"},
	}
	for _, p := range proposals {
		raw, err := Encode(p)
		require.NoError(t, err)
		decoded, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, p, decoded)
	}
}
