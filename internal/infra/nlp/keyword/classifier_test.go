package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyClimateQuery(t *testing.T) {
	c := NewClassifier()

	cls, err := c.Classify(context.Background(), "What are the impacts of ocean temperature changes on marine biodiversity?")
	require.NoError(t, err)

	assert.Equal(t, []string{"climate"}, cls.Domains)
	assert.Contains(t, cls.Tags, "climate")
	assert.Contains(t, cls.Tags, "marine")
	assert.Contains(t, cls.Intents, "impact")
	assert.Equal(t, "temperature", cls.Context.Focus)
	assert.Len(t, cls.Subtasks, 1)
	assert.Equal(t, "analyze_domain_climate_0", cls.Subtasks[0].ID)
	assert.InDelta(t, 1.0, cls.Confidence, 1e-9)
}

func TestClassifyMultiDomain(t *testing.T) {
	c := NewClassifier()

	cls, err := c.Classify(context.Background(), "Compare quantum computing with machine learning")
	require.NoError(t, err)

	assert.Equal(t, []string{"quantum", "artificial"}, cls.Domains)
	assert.Equal(t, "comparison", cls.Context.QueryType)
	assert.Contains(t, cls.Intents, "compare")
	assert.Len(t, cls.Subtasks, 2)
}

func TestClassifyNoDomainMatch(t *testing.T) {
	c := NewClassifier()

	cls, err := c.Classify(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Empty(t, cls.Domains)
	assert.Empty(t, cls.Tags)
	assert.Equal(t, []string{"explain"}, cls.Intents, "default intent when nothing matches")
	assert.Equal(t, "general", cls.Context.Focus)
	assert.Empty(t, cls.Subtasks)
	// Base 0.7 + intents 0.1 + context 0.1, no subtasks.
	assert.InDelta(t, 0.9, cls.Confidence, 1e-9)
}

func TestClassifyComplexity(t *testing.T) {
	c := NewClassifier()

	cls, err := c.Classify(context.Background(), "what is climate")
	require.NoError(t, err)
	assert.Equal(t, "simple", cls.Context.Complexity)

	cls, err = c.Classify(context.Background(), "please explain in great detail how rising ocean temperature levels influence coastal weather systems over time")
	require.NoError(t, err)
	assert.Equal(t, "complex", cls.Context.Complexity)
}

func TestClassifyDeterministicOrder(t *testing.T) {
	c := NewClassifier()
	ctx := context.Background()

	first, err := c.Classify(ctx, "quantum entanglement and climate weather and neural network models")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := c.Classify(ctx, "quantum entanglement and climate weather and neural network models")
		require.NoError(t, err)
		assert.Equal(t, first.Domains, again.Domains)
		assert.Equal(t, first.Tags, again.Tags)
		assert.Equal(t, first.Intents, again.Intents)
	}
}
