package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"dayflow-hris/internal/bootstrap"
	"dayflow-hris/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type recordingAudit struct {
	entries []bootstrap.AuditLog
}

func (a *recordingAudit) Log(ctx context.Context, entry bootstrap.AuditLog) {
	a.entries = append(a.entries, entry)
}

func TestRunHTTPServer_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	audit := &recordingAudit{}

	done := make(chan error, 1)
	go func() {
		done <- bootstrap.RunHTTPServer(ctx, gin.New(), config.ServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		}, audit)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Len(t, audit.entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
}
