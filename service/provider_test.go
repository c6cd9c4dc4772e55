package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderID(t *testing.T) {
	tests := []struct {
		input   string
		want    ProviderID
		wantErr bool
	}{
		{input: "", want: ProviderOpenAI},
		{input: "openai", want: ProviderOpenAI},
		{input: "gemini", want: ProviderGemini},
		{input: "claude", wantErr: true},
		{input: "OpenAI", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseProviderID(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
