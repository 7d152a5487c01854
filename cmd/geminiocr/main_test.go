package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jo-hoe/geminiocr/internal/common"
	appcfg "github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/llm/gemini"
	"github.com/jo-hoe/geminiocr/internal/llm/genaisdk"
	"github.com/jo-hoe/geminiocr/internal/llm/mock"
	"github.com/jo-hoe/geminiocr/internal/llm/openai"
)

func TestNewLLMClient_Providers(t *testing.T) {
	for _, provider := range []string{common.ProviderGemini, common.ProviderGenAI, common.ProviderOpenAI, common.ProviderMock} {
		c, err := newLLMClient(appcfg.LLMConfig{Provider: provider, Language: "en"}, nil)
		if err != nil || c == nil {
			t.Fatalf("%s: client=%v err=%v", provider, c, err)
		}
		var ok bool
		switch provider {
		case common.ProviderGemini:
			_, ok = c.(*gemini.Client)
		case common.ProviderGenAI:
			_, ok = c.(*genaisdk.Client)
		case common.ProviderOpenAI:
			_, ok = c.(*openai.Client)
		case common.ProviderMock:
			_, ok = c.(*mock.Client)
		}
		if !ok {
			t.Fatalf("%s: unexpected client type %T", provider, c)
		}
	}
	if _, err := newLLMClient(appcfg.LLMConfig{Provider: "bogus"}, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestRecognizeFile_Mock(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "page.png")
	if err := os.WriteFile(p, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	client := mock.New(appcfg.MockSettings{Prefix: "Recognized by Mock"})

	// recognizeFile prints to stdout; redirect it for the assertion.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	err = recognizeFile(context.Background(), client, p, "en")
	os.Stdout = orig
	_ = w.Close()
	if err != nil {
		t.Fatalf("recognizeFile: %v", err)
	}
	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	if got := strings.TrimSpace(string(buf[:n])); !strings.HasPrefix(got, "Recognized by Mock (en,") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRecognizeFile_Missing(t *testing.T) {
	client := mock.New(appcfg.MockSettings{})
	if err := recognizeFile(context.Background(), client, filepath.Join(t.TempDir(), "nope.png"), ""); err == nil {
		t.Fatalf("expected read error")
	}
}
