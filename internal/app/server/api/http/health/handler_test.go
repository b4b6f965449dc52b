package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("refused") })
)

func TestHandler_ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantChecks map[string]string
		wantErr    string
	}{
		{
			name:       "no dependencies",
			wantChecks: map[string]string{},
		},
		{
			name:       "database reachable",
			checks:     map[string]Pinger{"database": up},
			wantChecks: map[string]string{"database": StatusOK},
		},
		{
			name:       "nil dependency skipped",
			checks:     map[string]Pinger{"database": up, "cache": nil},
			wantChecks: map[string]string{"database": StatusOK},
		},
		{
			name:    "database down",
			checks:  map[string]Pinger{"database": down, "store": down},
			wantErr: "database, store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.checks, slog.Default(), huma.Middlewares{})

			output, err := handler.ready(context.Background(), nil)

			if tt.wantErr != "" {
				var se huma.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusServiceUnavailable, se.GetStatus())
				assert.Contains(t, se.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusOK, output.Body.Status)
			assert.Equal(t, tt.wantChecks, output.Body.Checks)
		})
	}
}

func TestHandler_Routes(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(map[string]Pinger{"database": down}, slog.Default(), nil).SetupRoutes(api)

	live := api.Get("/api/v1/health/live")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.NotContains(t, live.Body.String(), "checks")

	ready := api.Get("/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
}
