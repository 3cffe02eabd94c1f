package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/dispatcher"
)

const validReply = "Here is your server:\n```json\n" +
	`{ roles: [{ "name": "Admin" }, { "name": "Member" }], categories: { "START": [{ "name": "welcome" }], "CHAT": [{ "name": "general" }], }, }` +
	"\n```"

const invalidReply = `{"roles": [], "categories": {"A": [{"name": "x"}]}}`

// scripted replies in order and records every conversation it was sent.
type scripted struct {
	replies []string
	calls   [][]Message
}

func (s *scripted) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	s.calls = append(s.calls, messages)
	if len(s.replies) == 0 {
		return "", errors.New("no more replies")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestDesignFirstAttempt(t *testing.T) {
	gen := &scripted{replies: []string{validReply}}
	rec := &builder.Recorder{}

	bp, err := NewDesigner(gen, Options{}).Design(context.Background(), Brief{Description: "gaming"}, "Test", rec)
	require.NoError(t, err)
	assert.Len(t, gen.calls, 1)
	require.Len(t, bp.Categories, 2)
	assert.Equal(t, "START", bp.Categories[0].Name)
	assert.Equal(t, []string{"🧠 Generating blueprint with AI..."}, rec.Lines)

	msgs := gen.calls[0]
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[1].Content, "Valid examples:")
	assert.True(t, strings.HasPrefix(msgs[2].Content, "gaming\n"))
}

func TestDesignRepairs(t *testing.T) {
	gen := &scripted{replies: []string{invalidReply, validReply}}

	bp, err := NewDesigner(gen, Options{}).Design(context.Background(), Brief{}, "Test", nil)
	require.NoError(t, err)
	require.Len(t, gen.calls, 2)
	assert.Len(t, bp.Roles, 2)

	repair := gen.calls[1]
	require.Len(t, repair, 2)
	assert.Contains(t, repair[0].Content, "/roles")
	assert.JSONEq(t, invalidReply, repair[1].Content)
}

func TestDesignGivesUp(t *testing.T) {
	t.Run("never parseable", func(t *testing.T) {
		gen := &scripted{replies: []string{"nope", "", "still nope"}}
		rec := &builder.Recorder{}
		_, err := NewDesigner(gen, Options{}).Design(context.Background(), Brief{}, "Test", rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoValidBlueprint))
		assert.Len(t, gen.calls, MaxAttempts)
		assert.Contains(t, rec.Lines, "🔁 Attempt 3 fixing blueprint...")
	})

	t.Run("never valid", func(t *testing.T) {
		replies := make([]string, 2*MaxAttempts)
		for i := range replies {
			replies[i] = invalidReply
		}
		gen := &scripted{replies: replies}
		_, err := NewDesigner(gen, Options{}).Design(context.Background(), Brief{}, "Test", nil)

		var designErr *DesignError
		require.ErrorAs(t, err, &designErr)
		assert.Len(t, gen.calls, 2*MaxAttempts)
		assert.Contains(t, blueprint.FormatErrors(designErr.Errors), "/roles")
	})
}

func TestDesignInjectsInfoChannels(t *testing.T) {
	gen := &scripted{replies: []string{validReply}}
	bp, err := NewDesigner(gen, Options{}).Design(context.Background(),
		Brief{Description: "A crypto trading group", WantsInfo: true}, "Moon", nil)
	require.NoError(t, err)

	first := bp.Categories[0].Channels
	require.Len(t, first, 4)
	assert.Equal(t, "rules", first[0].Name)
	assert.Equal(t, "💎 Server Guidelines", first[0].Message.Title)
	assert.Equal(t, "public-readonly", first[0].PermissionsPreset)
	assert.Equal(t, "welcome", first[1].Name)
	assert.Equal(t, "about", first[2].Name)
	assert.Contains(t, first[2].Message.Body, "Welcome to Moon!")
	assert.Equal(t, "faq", first[3].Name)
	assert.True(t, blueprint.Validate(bp).Valid)
}

func TestInferTemplates(t *testing.T) {
	tests := []struct {
		desc      string
		wantRules string
		wantFAQ   string
	}{
		{"Competitive GAME night", TemplateGaming, TemplateGaming},
		{"player hub", TemplateGaming, TemplateDefault},
		{"DeFi research", TemplateCrypto, TemplateDefault},
		{"NFT drops", TemplateCrypto, TemplateCrypto},
		{"bot help desk", TemplateSupport, TemplateSupport},
		{"YouTube fans", TemplateContent, TemplateDefault},
		{"stream team", TemplateContent, TemplateContent},
		{"business network", TemplateProfessional, TemplateProfessional},
		{"", TemplateDefault, TemplateDefault},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, RuleTemplates[tt.wantRules], InferRuleTemplate(tt.desc))
			assert.Equal(t, FAQTemplates[tt.wantFAQ], InferFAQTemplate(tt.desc))
		})
	}
}

func TestTemplateKey(t *testing.T) {
	assert.Equal(t, TemplateGaming, TemplateKey("Gaming community rules"))
	assert.Equal(t, TemplateCrypto, TemplateKey("Crypto/DeFi guidelines"))
	assert.Equal(t, TemplateProfessional, TemplateKey("Professional/business rules"))
	assert.Equal(t, TemplateSupport, TemplateKey("support"))
	assert.Equal(t, "", TemplateKey("Auto-detect from server type"))
}

func TestInjectInfoChannelsKeepsExisting(t *testing.T) {
	bp := &blueprint.Blueprint{
		Roles: []blueprint.Role{{Name: "A"}},
		Categories: blueprint.Categories{
			{Name: "Info", Channels: []blueprint.Channel{{Name: "server-rules"}, {Name: "FAQ"}}},
			{Name: "Other", Channels: []blueprint.Channel{{Name: "about"}}},
		},
	}
	added := InjectInfoChannels(bp, "", "Srv", TemplateSupport)
	assert.Equal(t, []string{"about"}, added)

	info := bp.Categories[0].Channels
	require.Len(t, info, 3)
	assert.Equal(t, "about", info[2].Name)
	assert.Contains(t, info[2].Message.Body, "A community server.")

	assert.Nil(t, InjectInfoChannels(&blueprint.Blueprint{}, "", "", ""))
}

func TestRuleTemplateBody(t *testing.T) {
	body := RuleTemplate{Rules: []string{"one", "two"}, Footer: "end"}.Body()
	assert.Equal(t, "1. one\n2. two\n\nend", body)

	preview := ContentPreview("gaming", "")
	assert.True(t, strings.HasPrefix(preview, "**🎮 Community Rules**\n1. "))
	assert.Contains(t, preview, "Q: How do I join games?")
}

func newGateway(t *testing.T, key string, handler fasthttp.RequestHandler) *Gateway {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go (&fasthttp.Server{Handler: handler}).Serve(ln) //nolint:errcheck
	t.Cleanup(func() { _ = ln.Close() })

	pool := dispatcher.NewHTTPPool(1, dispatcher.PoolOptions{
		Timeout: 2 * time.Second,
		Dial:    func(string) (net.Conn, error) { return ln.Dial() },
	})
	return NewGateway(dispatcher.NewClient(pool, nil), "http://gateway/v1/chat/completions", key, "")
}

func TestGatewayGenerate(t *testing.T) {
	var got chatRequest
	var auth string
	gw := newGateway(t, "secret", func(ctx *fasthttp.RequestCtx) {
		auth = string(ctx.Request.Header.Peek("Authorization"))
		_ = json.Unmarshal(ctx.PostBody(), &got)
		ctx.SetBodyString(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`)
	})

	out, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
}

func TestGatewayRetriesOnce(t *testing.T) {
	var hits int32
	gw := newGateway(t, "secret", func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&hits, 1)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})

	_, err := gw.Generate(context.Background(), nil, Options{})
	var statusErr *dispatcher.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, int32(gatewayAttempts), atomic.LoadInt32(&hits))
}

func TestGatewayWithoutKey(t *testing.T) {
	gw := newGateway(t, "", func(ctx *fasthttp.RequestCtx) {
		t.Error("request sent without a key")
	})
	out, err := gw.Generate(context.Background(), nil, Options{})
	assert.NoError(t, err)
	assert.Empty(t, out)
}
