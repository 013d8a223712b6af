package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	cfg, ok := reg.ByID("http2")
	if !ok || cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected http defaults applied, got %#v", cfg.HTTP)
	}
}

func TestLoadRegistryJSONWithEnvExpansion(t *testing.T) {
	t.Setenv("LINKMETA_TOPIC_ARN", "arn:aws:sns:us-east-1:123:links")
	path := writeFile(t, "publishers.json", `{"publishers":[
		{"id":"sns1","type":"SNS","sns":{"topic_arn":"${LINKMETA_TOPIC_ARN}","region":"us-east-1",
		 "credentials":{"access_key_id":"AK","secret_access_key":""}}}
	]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("sns1")
	if !ok {
		t.Fatalf("expected sns1 loaded")
	}
	if cfg.Type != TypeSNS || cfg.SNS.TopicARN != "arn:aws:sns:us-east-1:123:links" {
		t.Fatalf("unexpected sns config %#v", cfg.SNS)
	}
	if cfg.SNS.Credentials != nil {
		t.Fatalf("expected incomplete credentials to be dropped")
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writeFile(t, "publishers.yml", `
publishers:
  - id: dup
    type: http
    http: {url: https://a.example}
  - id: dup
    type: http
    http: {url: https://b.example}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate publisher error")
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		{ID: "", Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
