package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Adda-Baaj/link-meta/internal/domain"
	"github.com/Adda-Baaj/link-meta/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func testEvent() Event {
	return NewEvent("https://example.com/post", domain.ExtractionResult{Title: "Post"})
}

func TestSQSPublisherSendsEvent(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "q", queueURL: "https://sqs.example/queue", client: client, log: logger.NopLogger{}}

	evt := testEvent()
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.example/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["url_hash"]
	if !ok || aws.ToString(attr.StringValue) != evt.URLHash {
		t.Fatalf("url_hash attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"title":"Post"`) {
		t.Fatalf("message body missing metadata: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSPublisherPropagatesError(t *testing.T) {
	pub := &sqsPublisher{id: "q", client: &fakeSQSClient{err: errors.New("boom")}, log: logger.NopLogger{}}
	if err := pub.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSNSPublisherSendsEvent(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "t", topicARN: "arn:aws:sns:::topic", client: client, log: logger.NopLogger{}}

	if err := pub.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr := client.input.MessageAttributes["url_hash"]
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(client.input.Message), `"url":"https://example.com/post"`) {
		t.Fatalf("message missing url: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSPublisherPropagatesError(t *testing.T) {
	pub := &snsPublisher{id: "t", client: &fakeSNSClient{err: errors.New("boom")}, log: logger.NopLogger{}}
	if err := pub.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSQSPublisherDeduplicatesOnFIFOQueues(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "q", queueURL: "https://sqs.example/links.fifo", fifo: true, client: client, log: logger.NopLogger{}}

	evt := testEvent()
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.MessageDeduplicationId); got != evt.URLHash {
		t.Fatalf("MessageDeduplicationId = %q, want url hash", got)
	}
	if got := aws.ToString(client.input.MessageGroupId); got != evt.URLHash {
		t.Fatalf("MessageGroupId = %q, want url hash", got)
	}
}

func TestSQSPublisherStandardQueueOmitsFIFOFields(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "q", queueURL: "https://sqs.example/links", client: client, log: logger.NopLogger{}}

	if err := pub.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if client.input.MessageDeduplicationId != nil || client.input.MessageGroupId != nil {
		t.Fatalf("standard queues must not carry fifo fields")
	}
}

func TestNewSQSPublisherDetectsFIFOQueue(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "q",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL:    "https://sqs.us-east-1.amazonaws.com/123/links.fifo",
			Region:      "us-east-1",
			Credentials: &AWSCredentials{AccessKeyID: "AKID", SecretAccessKey: "secret"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if !pub.(*sqsPublisher).fifo {
		t.Fatalf("expected .fifo queue url to enable fifo mode")
	}
}

func TestSNSPublisherDeduplicatesOnFIFOTopics(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "t", topicARN: "arn:aws:sns:us-east-1:123:links.fifo", fifo: true, client: client, log: logger.NopLogger{}}

	evt := testEvent()
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.MessageDeduplicationId); got != evt.URLHash {
		t.Fatalf("MessageDeduplicationId = %q, want url hash", got)
	}
	if got := aws.ToString(client.input.Subject); got != "Post" {
		t.Fatalf("Subject = %q, want page title", got)
	}
}

func TestSNSSubjectIsSingleLineAndCapped(t *testing.T) {
	evt := NewEvent("https://example.com/x", domain.ExtractionResult{Title: "line one\nline two " + strings.Repeat("a", 200)})
	subject := subjectFor(evt)
	if strings.Contains(subject, "\n") {
		t.Fatalf("subject must not contain line breaks: %q", subject)
	}
	if n := len([]rune(subject)); n != maxSNSSubject {
		t.Fatalf("subject length = %d, want %d", n, maxSNSSubject)
	}
	if got := subjectFor(NewEvent("https://example.com/y", domain.ExtractionResult{})); got != "https://example.com/y" {
		t.Fatalf("expected url as subject for untitled page, got %q", got)
	}
}
