package setup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *dataaccess.Store, *dataaccess.MemoryPersister) {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	p := dataaccess.NewMemoryPersister()
	store := dataaccess.NewStore(l, p)
	return NewEngine(l, store, "!"), store, p
}

func guildSetup(store *dataaccess.Store, guildID string) entities.GuildSetup {
	var gs entities.GuildSetup
	store.View(func(doc *entities.Document) {
		if g, ok := doc.Guilds[guildID]; ok {
			gs = g.Setup
		}
	})
	return gs
}

func TestEngine_Complete(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	o := e.Start("g1", "c1", "u1", start)
	require.Equal(t, OutcomePrompt, o.Kind)
	require.Contains(t, o.Reply, "Step 1/6")

	answers := []string{"<#111>", "<@&222>", "333", "https://verify.example.com", "<#555>", "<@&666>"}
	for i, a := range answers {
		o = e.Handle(ctx, "c1", "u1", a, start.Add(time.Duration(i)*time.Second))
		if i < len(answers)-1 {
			require.Equal(t, OutcomePrompt, o.Kind, "answer %d", i)
		}
	}
	require.Equal(t, OutcomeCompleted, o.Kind)
	require.Equal(t, "c1", o.ChannelID)
	require.False(t, e.Active("c1", "u1"))

	require.Equal(t, entities.GuildSetup{
		TranscriptsChannelID: "111",
		MiddlemanRoleID:      "222",
		HelperRoleID:         "333",
		VerificationLink:     "https://verify.example.com",
		GuideChannelID:       "555",
		CoOwnerRoleID:        "666",
	}, guildSetup(store, "g1"))
}

func TestEngine_InvalidLinkReprompts(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start("g1", "c1", "u1", start)
	for _, a := range []string{"1", "2", "3"} {
		require.Equal(t, OutcomePrompt, e.Handle(ctx, "c1", "u1", a, start).Kind)
	}

	for i := 0; i < 3; i++ {
		o := e.Handle(ctx, "c1", "u1", "http://insecure.example.com", start)
		require.Equal(t, OutcomeReprompt, o.Kind)
		require.Contains(t, o.Reply, messages.SetupInvalidLink)
		require.Contains(t, o.Reply, "Step 4/6")
		require.Empty(t, guildSetup(store, "g1").VerificationLink)
	}

	o := e.Handle(ctx, "c1", "u1", "https://ok.example.com", start)
	require.Equal(t, OutcomePrompt, o.Kind)
	require.Contains(t, o.Reply, "Step 5/6")
	require.Equal(t, "https://ok.example.com", guildSetup(store, "g1").VerificationLink)
}

func TestEngine_CancelKeepsCommitted(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start("g1", "c1", "u1", start)
	require.Equal(t, OutcomePrompt, e.Handle(ctx, "c1", "u1", "<#111>", start).Kind)
	require.Equal(t, OutcomePrompt, e.Handle(ctx, "c1", "u1", "<@&222>", start).Kind)

	o := e.Handle(ctx, "c1", "u1", "CANCEL", start)
	require.Equal(t, OutcomeCancelled, o.Kind)
	require.False(t, e.Active("c1", "u1"))

	gs := guildSetup(store, "g1")
	require.Equal(t, "111", gs.TranscriptsChannelID)
	require.Equal(t, "222", gs.MiddlemanRoleID)
	require.Empty(t, gs.HelperRoleID)

	// Later messages are no longer consumed.
	require.Equal(t, OutcomeIgnored, e.Handle(ctx, "c1", "u1", "333", start).Kind)
}

func TestEngine_IgnoresOtherUsersAndChannels(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start("g1", "c1", "u1", start)

	require.Equal(t, OutcomeIgnored, e.Handle(ctx, "c1", "u2", "<#999>", start).Kind)
	require.Equal(t, OutcomeIgnored, e.Handle(ctx, "c2", "u1", "<#999>", start).Kind)
	require.Empty(t, guildSetup(store, "g1").TranscriptsChannelID)
	require.True(t, e.Active("c1", "u1"))
}

func TestEngine_TimeoutOnHandle(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start("g1", "c1", "u1", start)
	require.Equal(t, OutcomePrompt, e.Handle(ctx, "c1", "u1", "111", start.Add(time.Minute)).Kind)

	// The deadline resets after each answer.
	o := e.Handle(ctx, "c1", "u1", "222", start.Add(time.Minute+Timeout+time.Second))
	require.Equal(t, OutcomeTimedOut, o.Kind)
	require.Equal(t, messages.SetupTimeout, o.Reply)

	gs := guildSetup(store, "g1")
	require.Equal(t, "111", gs.TranscriptsChannelID)
	require.Empty(t, gs.MiddlemanRoleID)
}

func TestEngine_Expire(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.Start("g1", "c1", "u1", start)
	e.Start("g1", "c2", "u2", start.Add(time.Minute))

	require.Empty(t, e.Expire(start.Add(Timeout)))

	out := e.Expire(start.Add(Timeout + time.Second))
	require.Len(t, out, 1)
	require.Equal(t, OutcomeTimedOut, out[0].Kind)
	require.Equal(t, "c1", out[0].ChannelID)
	require.False(t, e.Active("c1", "u1"))
	require.True(t, e.Active("c2", "u2"))
}

func TestEngine_RestartReplaces(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start("g1", "c1", "u1", start)
	require.Equal(t, OutcomePrompt, e.Handle(ctx, "c1", "u1", "111", start).Kind)

	o := e.Start("g1", "c1", "u1", start)
	require.Contains(t, o.Reply, "Step 1/6")
}

func TestEngine_StoreFailure(t *testing.T) {
	e, _, p := newTestEngine(t)
	p.SaveErr = errors.New("disk full")

	e.Start("g1", "c1", "u1", start)
	o := e.Handle(context.Background(), "c1", "u1", "111", start)
	require.Equal(t, OutcomeFailed, o.Kind)
	require.ErrorIs(t, o.Err, p.SaveErr)
	require.False(t, e.Active("c1", "u1"))
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<#123>", "123"},
		{"<@&456>", "456"},
		{"<@789>", "789"},
		{"<@!789>", "789"},
		{" 123 ", "123"},
		{"<#abc>", "<#abc>"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeID(tt.in))
		})
	}
}
