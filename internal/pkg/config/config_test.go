package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.ResetTTL != time.Hour {
		t.Fatalf("expected 60m reset ttl, got %v", cfg.ResetTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if !cfg.Cart.MergeOnLogin || cfg.Cart.SnapshotPolicy != "incoming" {
		t.Fatalf("unexpected cart config: %+v", cfg.Cart)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported as production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "secret",
		"ENV":                        "production",
		"CORS_ALLOWED_ORIGINS":       "https://shop.example.com,https://admin.example.com",
		"CART_MERGE_ON_LOGIN":        "false",
		"CART_MERGE_SNAPSHOT_POLICY": "keep",
		"SMTP_HOST":                  "smtp.example.com",
		"REDIS_DB":                   "3",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Cart.MergeOnLogin || cfg.Cart.SnapshotPolicy != "keep" {
		t.Fatalf("unexpected cart config: %+v", cfg.Cart)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 || cfg.Redis.DB != 3 {
		t.Fatalf("unexpected nested config: %+v %+v", cfg.SMTP, cfg.Redis)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "secret",
		"CART_MERGE_SNAPSHOT_POLICY": "newest",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestLoadMongo_IgnoresServerSettings(t *testing.T) {
	cfg, err := loadMongo(context.Background(), envconfig.MapLookuper(map[string]string{
		"MONGO_URI": "mongodb://db:27017",
	}))
	if err != nil {
		t.Fatalf("loadMongo returned error: %v", err)
	}
	if cfg.URI != "mongodb://db:27017" || cfg.Database != "storefront" {
		t.Fatalf("unexpected mongo config: %+v", cfg)
	}
}
