package config

import (
	"testing"
)

func TestEnvValidator_ValidateRequired(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "All required present",
			env: map[string]string{
				"BOT_TOKEN":       "123:abc",
				"API_ID":          "42",
				"API_HASH":        "hash",
				"DUMP_CHANNEL_ID": "-100123",
			},
			wantErr: false,
		},
		{
			name: "Missing token",
			env: map[string]string{
				"BOT_TOKEN":       "",
				"API_ID":          "42",
				"API_HASH":        "hash",
				"DUMP_CHANNEL_ID": "-100123",
			},
			wantErr: true,
		},
		{
			name: "Non-numeric API ID",
			env: map[string]string{
				"BOT_TOKEN":       "123:abc",
				"API_ID":          "not-a-number",
				"API_HASH":        "hash",
				"DUMP_CHANNEL_ID": "-100123",
			},
			wantErr: true,
		},
		{
			name: "Non-numeric dump channel",
			env: map[string]string{
				"BOT_TOKEN":       "123:abc",
				"API_ID":          "42",
				"API_HASH":        "hash",
				"DUMP_CHANNEL_ID": "@my_channel",
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			validator := NewEnvValidator()
			err := validator.ValidateRequired()
			if tc.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestEnvValidator_GetAPICredentials(t *testing.T) {
	t.Setenv("API_ID", "9876")
	t.Setenv("API_HASH", "deadbeef")

	validator := NewEnvValidator()
	apiID, apiHash, err := validator.GetAPICredentials()
	if err != nil {
		t.Fatalf("GetAPICredentials failed: %v", err)
	}
	if apiID != 9876 {
		t.Errorf("Expected API ID 9876, got %d", apiID)
	}
	if apiHash != "deadbeef" {
		t.Errorf("Expected API hash deadbeef, got %s", apiHash)
	}
}

func TestEnvValidator_GetDumpChannelID(t *testing.T) {
	t.Setenv("DUMP_CHANNEL_ID", "-1009999")

	validator := NewEnvValidator()
	id, err := validator.GetDumpChannelID()
	if err != nil {
		t.Fatalf("GetDumpChannelID failed: %v", err)
	}
	if id != -1009999 {
		t.Errorf("Expected -1009999, got %d", id)
	}
}
