package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceService(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("quote numbers increment within the year", func(t *testing.T) {
		env := newTestEnv(t)

		first, err := env.numbers.GenerateQuoteNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-001", year), first)

		second, err := env.numbers.GenerateQuoteNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-002", year), second)
	})

	t.Run("order numbers count independently of quote numbers", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.numbers.GenerateQuoteNumber(ctx)
		require.NoError(t, err)
		_, err = env.numbers.GenerateQuoteNumber(ctx)
		require.NoError(t, err)

		order, err := env.numbers.GenerateOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("O-%d-001", year), order)
	})
}
