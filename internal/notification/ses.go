package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/config"
)

// SESClient abstracts the SES client for testing.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender delivers email through AWS SES. Credentials come from the
// default AWS chain.
type SESSender struct {
	from   string
	region string
	logger zerolog.Logger

	mu     sync.Mutex
	client SESClient
}

func NewSESSender(cfg config.EmailConfig, logger zerolog.Logger) *SESSender {
	region := strings.TrimSpace(cfg.SESRegion)
	if region == "" {
		region = "us-east-1"
	}
	return &SESSender{
		from:   strings.TrimSpace(cfg.From),
		region: region,
		logger: logger.With().Str("sender", "ses").Logger(),
	}
}

// NewSESSenderWithClient builds a sender around an existing client.
func NewSESSenderWithClient(client SESClient, from string, logger zerolog.Logger) *SESSender {
	return &SESSender{
		from:   strings.TrimSpace(from),
		logger: logger.With().Str("sender", "ses").Logger(),
		client: client,
	}
}

func (s *SESSender) ensureClient(ctx context.Context) (SESClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.region),
		awsconfig.WithLogger(newSmithyLogger(s.logger)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "ses: load aws config")
	}
	// Failed deliveries are reported to the caller, never retried.
	s.client = ses.NewFromConfig(cfg, func(o *ses.Options) {
		o.RetryMaxAttempts = 1
	})
	return s.client, nil
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("ses: destination required")
	}
	if s.from == "" {
		return errors.New("ses: from required")
	}
	client, err := s.ensureClient(ctx)
	if err != nil {
		return err
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{strings.TrimSpace(msg.To)},
		},
		Source: aws.String(s.from),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: sesContent(textBody(msg)),
				Html: sesContent(msg.HTML),
			},
		},
	}

	out, err := client.SendEmail(ctx, input)
	if err != nil {
		return errors.Wrap(err, "ses: send email")
	}

	event := s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject)
	if out != nil && out.MessageId != nil {
		event = event.Str("message_id", *out.MessageId)
	}
	event.Msg("email sent")
	return nil
}

func (s *SESSender) String() string {
	return fmt.Sprintf("SESSender(%s)", s.region)
}

func sesContent(body string) *types.Content {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")}
}
