package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestSendMessageRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SendMessageRequest
		wantErr bool
	}{
		{"text only", SendMessageRequest{Text: "selam"}, false},
		{"image only", SendMessageRequest{Image: "data:image/png;base64,x"}, false},
		{"audio with duration", SendMessageRequest{Audio: "data:audio/ogg;base64,x", AudioDuration: floatPtr(2.5)}, false},
		{"empty payload", SendMessageRequest{}, true},
		{"whitespace-only text", SendMessageRequest{Text: "   "}, true},
		{"text and image", SendMessageRequest{Text: "x", Image: "data:image/png;base64,x"}, true},
		{"text and audio", SendMessageRequest{Text: "x", Audio: "data:audio/ogg;base64,x", AudioDuration: floatPtr(1)}, true},
		{"all three", SendMessageRequest{Text: "x", Image: "i", Audio: "a", AudioDuration: floatPtr(1)}, true},
		{"audio without duration", SendMessageRequest{Audio: "data:audio/ogg;base64,x"}, true},
		{"audio with zero duration", SendMessageRequest{Audio: "data:audio/ogg;base64,x", AudioDuration: floatPtr(0)}, true},
		{"duration without audio", SendMessageRequest{Text: "x", AudioDuration: floatPtr(1)}, true},
		{"text at limit", SendMessageRequest{Text: strings.Repeat("a", 2000)}, false},
		{"text over limit", SendMessageRequest{Text: strings.Repeat("a", 2001)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessageKind(t *testing.T) {
	text := "x"
	url := "/api/uploads/f.png"

	assert.Equal(t, MessageKindText, (&Message{Text: &text}).Kind())
	assert.Equal(t, MessageKindImage, (&Message{Image: &url}).Kind())
	assert.Equal(t, MessageKindAudio, (&Message{Audio: &url}).Kind())
}
