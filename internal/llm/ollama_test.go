package llm

import (
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestNewOllamaClient(t *testing.T) {
	tests := []struct {
		name        string
		model       string
		baseURL     string
		wantBaseURL string
		wantErr     bool
	}{
		{name: "default server", model: "llama3.2", wantBaseURL: defaultOllamaBaseURL},
		{name: "custom server", model: "llama3.2", baseURL: "http://gpu-box:11434", wantBaseURL: "http://gpu-box:11434"},
		{name: "missing model", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOllamaClient(tt.model, tt.baseURL)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.baseURL != tt.wantBaseURL {
				t.Errorf("baseURL = %q, want %q", client.baseURL, tt.wantBaseURL)
			}
		})
	}
}

func TestChatMessageType(t *testing.T) {
	tests := map[Role]llms.ChatMessageType{
		RoleSystem:    llms.ChatMessageTypeSystem,
		RoleAssistant: llms.ChatMessageTypeAI,
		RoleUser:      llms.ChatMessageTypeHuman,
		"tool":        llms.ChatMessageTypeHuman,
	}
	for role, want := range tests {
		if got := chatMessageType(role); got != want {
			t.Errorf("chatMessageType(%q) = %q, want %q", role, got, want)
		}
	}
}
