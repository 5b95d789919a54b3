package openai

import "vera/internal/core/media"

// ContentBlock is one typed item of a user turn
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Message is one conversational turn of the request input
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Block types understood by the Responses API
const (
	BlockInputText  = "input_text"
	BlockInputImage = "input_image"
)

// BuildContentBlock renders content for the model according to its kind
// images are referenced directly, video and audio only by url, the rest as text
func BuildContentBlock(kind media.Kind, content string) ContentBlock {
	switch kind {
	case media.Image:
		return ContentBlock{Type: BlockInputImage, ImageURL: content}
	case media.Video, media.Audio:
		return ContentBlock{Type: BlockInputText, Text: "Media URL: " + content}
	default:
		return ContentBlock{Type: BlockInputText, Text: content}
	}
}

// BuildRequestInput assembles the single user turn: prompt, media type hint, then the block
func BuildRequestInput(kind media.Kind, block ContentBlock) []Message {
	hint := kind
	if hint == "" {
		hint = media.Unknown
	}
	return []Message{{
		Role: "user",
		Content: []ContentBlock{
			{Type: BlockInputText, Text: Prompt},
			{Type: BlockInputText, Text: "media_type_hint:" + hint.String()},
			block,
		},
	}}
}
