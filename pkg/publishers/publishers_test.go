package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: replies-queue
    type: sqs
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123/replies
      region: us-east-1
      access_key_id: " AKID "
  - id: replies-topic
    type: pubsub
    pubsub:
      project_id: okbot
      topic: replies
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "replies-queue" || enabled[1].ID != "replies-topic" {
		t.Fatalf("unexpected enabled publishers %#v", enabled)
	}

	sqsCfg, ok := reg.ByID("replies-queue")
	if !ok || sqsCfg.SQS.Region != "us-east-1" || sqsCfg.SQS.AccessKeyID != "AKID" {
		t.Fatalf("inline aws config not decoded: %#v", sqsCfg.SQS)
	}
	hook, _ := reg.ByID("hook")
	if hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", hook.HTTP)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":     {ID: "h1", Type: TypeHTTP},
		"missing sns arn":  {ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSConfig: AWSConfig{Region: "us-east-1"}}},
		"missing region":   {ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		"missing topic":    {ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
		"unsupported type": {ID: "k1", Type: "kafka"},
		"missing id":       {Type: TypeHTTP},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validatePublisherConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
