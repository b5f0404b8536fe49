package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	path := filepath.Join(t.TempDir(), "app.log")
	_, err = New(Config{Output: path})
	require.NoError(t, err)

	_, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestContextHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))

	FromContext(ctx).Info("hello")
	entry := recorded.All()[0]
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	assert.Equal(t, "user-9", entry.ContextMap()["user_id"])
}

func TestL_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("no span")
	assert.NotContains(t, recorded.All()[0].ContextMap(), "trace_id")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	L(ctx).Info("with span")
	fields := recorded.All()[1].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("request_id", "req-42") })
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		GetGinLogger(c).Info("inside handler")
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	reqLogs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, reqLogs, 2)
	assert.Equal(t, zapcore.InfoLevel, reqLogs[0].Level)
	assert.Equal(t, zapcore.WarnLevel, reqLogs[1].Level)
	assert.Equal(t, "req-42", reqLogs[0].ContextMap()["request_id"])
	assert.Equal(t, 1, recorded.FilterMessage("inside handler").Len())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	gl.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 0, recorded.Len(), "not found and fast queries are quiet at warn")

	gl.Trace(ctx, time.Now(), sql, errors.New("deadlock detected"))
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)

	assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.(*GormLogger).Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, recorded.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
