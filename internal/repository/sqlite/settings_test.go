package sqlite

import (
	"context"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(NewTestDB(t))

	if _, ok, err := repo.Get(ctx, "profile.name"); err != nil || ok {
		t.Fatalf("expected unset key, got ok=%v err=%v", ok, err)
	}

	if err := repo.Set(ctx, map[string]string{"profile.name": "Ana", "test_mode": "true"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, map[string]string{"profile.name": "Ana B."}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	tests := map[string]string{
		"profile.name": "Ana B.",
		"test_mode":    "true",
	}
	for key, want := range tests {
		got, ok, err := repo.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("get %s: ok=%v err=%v", key, ok, err)
		}
		if got != want {
			t.Errorf("get %s = %q, want %q", key, got, want)
		}
	}
}
