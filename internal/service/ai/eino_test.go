package ai

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoModel struct {
	reply string
	seen  []*schema.Message
}

func (m *echoModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.seen = input
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *echoModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.seen = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(m.reply, nil)}), nil
}

func TestChainGeneratorSendsPromptAsUserMessage(t *testing.T) {
	ctx := context.Background()
	fake := &echoModel{reply: "resposta"}

	gen, err := NewChainGenerator(ctx, fake)
	require.NoError(t, err)

	text, err := gen.Generate(ctx, "prompt com {chaves}")
	require.NoError(t, err)
	assert.Equal(t, "resposta", text)

	require.Len(t, fake.seen, 1)
	assert.Equal(t, schema.User, fake.seen[0].Role)
	assert.Equal(t, "prompt com {chaves}", fake.seen[0].Content)
}

func TestChainGeneratorEmptyReply(t *testing.T) {
	ctx := context.Background()
	gen, err := NewChainGenerator(ctx, &echoModel{reply: "  "})
	require.NoError(t, err)

	_, err = gen.Generate(ctx, "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
