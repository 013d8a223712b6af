package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/link-meta/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsPublisher sends extraction events to a topic. FIFO topics are
// deduplicated on the url hash like FIFO queues.
type snsPublisher struct {
	id       string
	topicARN string
	fifo     bool
	client   snsClient
	log      logger.Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}

	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     strings.HasSuffix(cfg.SNS.TopicARN, fifoSuffix),
		client:   sns.NewFromConfig(awsCfg),
		log:      logger.Ensure(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(subjectFor(evt)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			attrURLHash: {DataType: aws.String("String"), StringValue: aws.String(evt.URLHash)},
		},
	}
	if s.fifo {
		input.MessageGroupId = aws.String(evt.URLHash)
		input.MessageDeduplicationId = aws.String(evt.URLHash)
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", s.topicARN, err)
	}
	s.log.DebugObj("event published on sns", "sns_delivery", map[string]any{
		"publisher_id": s.id,
		"message_id":   aws.ToString(out.MessageId),
		"url_hash":     evt.URLHash,
		"fifo":         s.fifo,
	})
	return nil
}

// subjectFor builds an email-safe subject: SNS caps subjects at 100 chars
// and rejects line breaks.
func subjectFor(evt Event) string {
	subject := evt.Metadata.Title
	if subject == "" {
		subject = evt.URL
	}
	subject = strings.Join(strings.Fields(subject), " ")
	if subject == "" {
		return "link extracted"
	}
	if r := []rune(subject); len(r) > maxSNSSubject {
		subject = string(r[:maxSNSSubject])
	}
	return subject
}

const maxSNSSubject = 100
