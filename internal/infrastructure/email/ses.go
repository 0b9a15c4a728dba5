package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/domain"
)

// sesAPI is the slice of *ses.Client the notifier needs.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier delivers OTP codes through Amazon SES.
type SESNotifier struct {
	client sesAPI
	from   string
}

func NewSESNotifier(client sesAPI, from string) *SESNotifier {
	return &SESNotifier{client: client, from: from}
}

// NewSESNotifierFromEnv uses the default AWS credential chain.
func NewSESNotifierFromEnv(ctx context.Context, region, from string) (*SESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSESNotifier(ses.NewFromConfig(cfg), from), nil
}

func (n *SESNotifier) SendOTP(ctx context.Context, msg otp.Message) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(otpSubject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(otpBody(msg)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return domain.ErrEmailUnavailable(err)
	}
	return nil
}
