package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNew_DefaultTimeout(t *testing.T) {
	if c := New(0); c.timeout != DefaultCheckTimeout {
		t.Errorf("timeout = %v, want 5s", c.timeout)
	}
	if c := New(time.Second); c.timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", c.timeout)
	}
}

func TestChecker_RegisterAndList(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("dev_server", func(context.Context) error { return nil })
	c.RegisterCheck("config", func(context.Context) error { return nil })
	c.RegisterCheck("config", func(context.Context) error { return errors.New("replaced") })

	if got := c.ListChecks(); !reflect.DeepEqual(got, []string{"config", "dev_server"}) {
		t.Errorf("ListChecks() = %v", got)
	}

	c.UnregisterCheck("config")
	if got := c.ListChecks(); !reflect.DeepEqual(got, []string{"dev_server"}) {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

func TestChecker_CheckLiveness(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("failing", func(context.Context) error { return errors.New("down") })

	status := c.CheckLiveness(context.Background())
	if status.Status != StatusOK {
		t.Errorf("Status = %q, want ok regardless of checks", status.Status)
	}
	if status.Checks != nil {
		t.Errorf("Checks = %v, want none", status.Checks)
	}
}

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"config":     func(context.Context) error { return nil },
				"dev_server": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantChecks: map[string]string{"config": StatusOK, "dev_server": StatusOK},
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"config":     func(context.Context) error { return nil },
				"dev_server": func(context.Context) error { return ErrPortUnknown },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"config": StatusOK, "dev_server": StatusUnhealthy},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"slow": StatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(50 * time.Millisecond)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.CheckReadiness(context.Background())

			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			got := make(map[string]string, len(status.Checks))
			for name, result := range status.Checks {
				got[name] = result.Status
			}
			if !reflect.DeepEqual(got, tt.wantChecks) {
				t.Errorf("checks = %v, want %v", got, tt.wantChecks)
			}
		})
	}
}

func TestChecker_FailureMessage(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.RegisterCheck("dev_server", func(context.Context) error { return ErrPortUnknown })
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.CheckReadiness(context.Background())

	if msg := status.Checks["dev_server"].Message; msg != ErrPortUnknown.Error() {
		t.Errorf("dev_server message = %q", msg)
	}
	if msg := status.Checks["slow"].Message; msg != ErrCheckTimeout.Error() && msg != context.DeadlineExceeded.Error() {
		t.Errorf("slow message = %q", msg)
	}
}
