package common

import "testing"

func TestConstantsValues(t *testing.T) {
	if ContentTypeJSON != "application/json" {
		t.Fatalf("ContentTypeJSON = %q", ContentTypeJSON)
	}
	if HeaderAPIKey != "X-API-Key" {
		t.Fatalf("HeaderAPIKey = %q", HeaderAPIKey)
	}
	if HeaderGoogAPIKey != "X-goog-api-key" {
		t.Fatalf("HeaderGoogAPIKey = %q", HeaderGoogAPIKey)
	}
	if PathHealthz != "/healthz" || PathRecognitions != "/v1/recognitions" {
		t.Fatalf("paths mismatch: %q, %q", PathHealthz, PathRecognitions)
	}
	if DefaultGeminiEndpoint != "https://generativelanguage.googleapis.com" || DefaultGeminiModel != "gemini-flash-lite" {
		t.Fatalf("gemini defaults mismatch: %q, %q", DefaultGeminiEndpoint, DefaultGeminiModel)
	}
	if DefaultTemperature != 1 {
		t.Fatalf("DefaultTemperature = %v", DefaultTemperature)
	}
	if FlagEnable != "enable" {
		t.Fatalf("FlagEnable = %q", FlagEnable)
	}
	if MimeImagePNG != "image/png" || MimeImageJPEG != "image/jpeg" || MimeImageJPG != "image/jpg" {
		t.Fatalf("mime constants mismatch")
	}
}
