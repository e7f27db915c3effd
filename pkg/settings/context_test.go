package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoContextFromContext(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOk   bool
	}{
		{
			name: "context_with_settings",
			setupCtx: func() context.Context {
				return IntoContext(context.Background(), &Run{NoColor: true, Interactive: true})
			},
			wantOk: true,
		},
		{
			name:     "context_without_settings",
			setupCtx: context.Background,
			wantOk:   false,
		},
		{
			name: "context_with_wrong_type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), settingsContextKey, "wrong type")
			},
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.setupCtx())
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				require.NotNil(t, got)
				assert.True(t, got.NoColor)
				assert.True(t, got.Interactive)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	assert.Equal(t, NewCliParams(), FromContextOrDefault(context.Background()))

	stored := &Run{LogFile: "kliff.log"}
	assert.Same(t, stored, FromContextOrDefault(IntoContext(context.Background(), stored)))
}
