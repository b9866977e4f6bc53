package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "5175" || c.DBDriver != "sqlite3" || c.DailyBoards != 100 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Production() {
		t.Fatal("default env reported as production")
	}
	if c.TokenTTL() != 14*24*time.Hour {
		t.Fatalf("TokenTTL = %v", c.TokenTTL())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DAILY_BOARDS", "12")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "9000" || !c.Production() || c.DBDriver != "sqlite" || c.DailyBoards != 12 || c.RequestTimeout != 3*time.Second {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct{ key, val string }{
		{"DAILY_BOARDS", "0"},
		{"DAILY_MAX_ATTEMPTS", "-1"},
		{"JWT_EXPIRES_DAYS", "fourteen"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%s", tt.key, tt.val)
			}
		})
	}
}
