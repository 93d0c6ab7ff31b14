package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModeChoice(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"1", ModeTicket, true},
		{"ticket", ModeTicket, true},
		{"TICKET", ModeTicket, true},
		{" 2 ", ModeMiddleman, true},
		{"Middleman", ModeMiddleman, true},
		{"3", ModeUnset, false},
		{"tickets", ModeUnset, false},
		{"", ModeUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseModeChoice(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_Guild(t *testing.T) {
	d := NewDocument()
	g := d.Guild("g1")
	g.Setup.MiddlemanRoleID = "mm"

	require.Same(t, g, d.Guild("g1"))
	require.Len(t, d.Guilds, 1)
}

func TestGuildSetup_Roles(t *testing.T) {
	s := &GuildSetup{MiddlemanRoleID: "mm", CoOwnerRoleID: "co"}
	require.Equal(t, []string{"mm", "co"}, s.Roles())
}
