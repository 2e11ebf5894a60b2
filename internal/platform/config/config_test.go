package config

import (
	"encoding/base64"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "pgstay-auth")
	t.Setenv("FIREBASE_CREDS_BASE64", base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))
	t.Setenv("FIREBASE_CREDS_FILE", "")
	t.Setenv("STORAGE_BUCKET", "pgstay-auth.firebasestorage.app")
	t.Setenv("PORT", "")
	t.Setenv("AUTH_MOCK", "")
	t.Setenv("MEDIA_MOCK", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("QUERY_CACHE_SIZE", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogFormat != "text" || cfg.QueryCacheSize != 256 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	creds, source, err := cfg.FirebaseCredentialsJSON()
	if err != nil || source != "base64" || string(creds) != `{"type":"service_account"}` {
		t.Errorf("FirebaseCredentialsJSON = %q, %q, %v", creds, source, err)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "missing project", env: map[string]string{"FIREBASE_PROJECT_ID": ""}, wantErr: true},
		{name: "missing creds", env: map[string]string{"FIREBASE_CREDS_BASE64": ""}, wantErr: true},
		{name: "missing bucket", env: map[string]string{"STORAGE_BUCKET": ""}, wantErr: true},
		{name: "missing bucket with media mock", env: map[string]string{"STORAGE_BUCKET": "", "MEDIA_MOCK": "true"}},
		{name: "bad bool", env: map[string]string{"AUTH_MOCK": "maybe"}, wantErr: true},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: true},
		{name: "bad cache size", env: map[string]string{"QUERY_CACHE_SIZE": "lots"}, wantErr: true},
		{name: "json logs", env: map[string]string{"LOG_FORMAT": "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load err = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}
