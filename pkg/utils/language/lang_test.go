package language

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   language.Tag
	}{
		{"", language.English},
		{"id-ID,id;q=0.9,en-US;q=0.8", language.Indonesian},
		{"en-GB,en;q=0.9", language.English},
		{"fr-FR", language.English},
		{";;;garbage", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			require.Equal(t, Code(tt.want), Code(Negotiate(tt.header)))
		})
	}
}

func TestCode(t *testing.T) {
	require.Equal(t, "id", Code(language.Indonesian))
	require.Equal(t, "en", Code(language.English))
}
