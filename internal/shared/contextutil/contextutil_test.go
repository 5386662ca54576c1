package contextutil_test

import (
	"context"
	"testing"

	"dayflow-hris/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, contextutil.GetRequestID(ctx))
	assert.Empty(t, contextutil.GetEmployeeID(ctx))
	assert.Empty(t, contextutil.GetRole(ctx))
	assert.Empty(t, contextutil.Fields(ctx))
	assert.NotNil(t, contextutil.GetLogger(ctx, nil))
}

func TestFields(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-9")
	ctx = contextutil.WithEmployeeID(ctx, "emp-1")
	ctx = contextutil.WithRole(ctx, "Admin")

	fields := contextutil.Fields(ctx)
	assert.Equal(t, []zap.Field{
		zap.String("request_id", "req-9"),
		zap.String("actor_id", "emp-1"),
		zap.String("actor_role", "Admin"),
	}, fields)
}

func TestGetLogger_PrefersContextLogger(t *testing.T) {
	scoped := zap.NewExample()
	fallback := zap.NewNop()

	ctx := contextutil.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, contextutil.GetLogger(ctx, fallback))
	assert.Same(t, fallback, contextutil.GetLogger(context.Background(), fallback))
}
