package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_PlainJSON(t *testing.T) {
	result := ParseReply(`{"message": "Two good fits", "product_ids": ["p1", "p2"], "recommendations": ["p3"]}`)

	require.True(t, result.Ok)
	assert.Equal(t, "Two good fits", result.Reply.Message)
	assert.Equal(t, []string{"p1", "p2"}, result.Reply.ProductIDs)
	assert.Equal(t, []string{"p3"}, result.Reply.Recommendations)
}

func TestParseReply_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"message\": \"ok\", \"product_ids\": [\"p1\"], \"recommendations\": []}\n```"

	result := ParseReply(raw)

	require.True(t, result.Ok)
	assert.Equal(t, []string{"p1"}, result.Reply.ProductIDs)
}

func TestParseReply_StripsBareFences(t *testing.T) {
	raw := "```\n{\"message\": \"ok\", \"product_ids\": [\"p1\"], \"recommendations\": []}\n```"

	result := ParseReply(raw)

	require.True(t, result.Ok)
}

func TestParseReply_Empty(t *testing.T) {
	result := ParseReply("")

	assert.False(t, result.Ok)
	assert.NotEmpty(t, result.Err)
}

func TestParseReply_Prose(t *testing.T) {
	result := ParseReply("Sure! Here are some great laptops for you.")

	assert.False(t, result.Ok)
}

func TestParseReply_UnknownFields(t *testing.T) {
	result := ParseReply(`{"message": "ok", "product_ids": ["p1"], "confidence": 0.9}`)

	assert.False(t, result.Ok)
}

func TestParseReply_NoProductIDs(t *testing.T) {
	result := ParseReply(`{"message": "nothing found", "product_ids": [], "recommendations": []}`)

	assert.False(t, result.Ok)
	assert.Equal(t, "no product ids in reply", result.Err)
}
