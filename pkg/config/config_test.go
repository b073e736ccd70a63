package config

import "testing"

func TestLoadAdminPasswordHasNoDefault(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	if cfg := Load(); cfg.AdminPassword != "" {
		t.Errorf("AdminPassword = %q, want empty when unset", cfg.AdminPassword)
	}

	t.Setenv("ADMIN_PASSWORD", "s3cret")
	if cfg := Load(); cfg.AdminPassword != "s3cret" {
		t.Errorf("AdminPassword = %q, want the configured value", cfg.AdminPassword)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("JWT_TTL_HOURS", "2")

	cfg := Load()
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes = %d, want 5 MiB", cfg.MaxUploadBytes)
	}
	if cfg.JWTTTL.Hours() != 2 {
		t.Errorf("JWTTTL = %v, want 2h", cfg.JWTTTL)
	}
}
