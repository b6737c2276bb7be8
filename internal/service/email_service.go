package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"mathclash/internal/games"
	"mathclash/internal/models"
	"mathclash/internal/validation"
)

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends achievement emails to guardians via Amazon SES
type EmailService struct {
	client     emailSender
	catalog    *games.Catalog
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(catalog *games.Catalog, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			catalog: catalog,
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return newEmailService(sesv2.NewFromConfig(cfg), catalog, fromEmail, fromName, appBaseURL, debug), nil
}

func newEmailService(client emailSender, catalog *games.Catalog, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		catalog:    catalog,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyAchievement emails the guardian that a learner raised their stars
// for a game. Results without a guardian address are skipped; a malformed
// address is an error.
func (s *EmailService) NotifyAchievement(ctx context.Context, result models.SessionResult, record *models.ProgressRecord) error {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Email service is disabled, skipping achievement for %s", result.StudentID)
		}
		return nil
	}
	if result.GuardianEmail == "" {
		return nil
	}
	if err := validation.ValidateEmail(result.GuardianEmail); err != nil {
		return fmt.Errorf("guardian of %s: %w", result.StudentID, err)
	}

	gameName := result.GameID
	if game, ok := s.catalog.Get(result.GameID); ok {
		gameName = game.Name
	}
	stars := strings.Repeat("★", record.StarsEarned) + strings.Repeat("☆", games.MaxStars-record.StarsEarned)
	progressLink := fmt.Sprintf("%s/progress/%s", s.appBaseURL, result.StudentID)

	subject := fmt.Sprintf("New stars in %s!", gameName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f5a623; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.stars { font-size: 32px; text-align: center; color: #f5a623; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
			<p class="stars">%s</p>
			<p>Your learner just finished a round of <strong>%s</strong> with %d points.</p>
			<p>Best score so far: %d after %d attempts.</p>
			<p style="text-align: center;"><a href="%s">See all progress</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from MathClash. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, subject, stars, gameName, result.Summary.FinalScore, record.BestScore, record.TotalAttempts, progressLink)

	textBody := fmt.Sprintf(`%s

%s

Your learner just finished a round of %s with %d points.
Best score so far: %d after %d attempts.

See all progress: %s

---
This is an automated email from MathClash. Please do not reply.
`, subject, stars, gameName, result.Summary.FinalScore, record.BestScore, record.TotalAttempts, progressLink)

	return s.sendEmail(ctx, result.GuardianEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
