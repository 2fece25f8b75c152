package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/realtime"
)

func TestNopBus(t *testing.T) {
	b := NewNopBus()
	assert.NoError(t, b.Publish(context.Background(), realtime.Event{Type: realtime.EventLearningPathGenerated}))
	assert.NoError(t, b.Close())
}

func TestNewRedisBus_Validation(t *testing.T) {
	_, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"})
	require.Error(t, err)

	_, err = NewRedisBus(logger.Nop(), RedisConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

func TestRedisBus_UninitializedPublish(t *testing.T) {
	var b *redisBus
	assert.Error(t, b.Publish(context.Background(), realtime.Event{}))
	assert.NoError(t, b.Close())
}
