// Package provision implements the identity provisioning flow: it creates a
// throwaway mailbox, registers an account with the generation provider,
// intercepts the mailed verification code, and extracts a session credential.
package provision

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/mgnegypt/nano-image/internal/platform/mailtm"
	"github.com/mgnegypt/nano-image/internal/platform/nanabanana"
	"github.com/mgnegypt/nano-image/internal/poll"
)

// Provisioning errors. Each terminal failure of the flow maps to exactly one
// of these; a caller that wants another attempt starts a fresh flow with a
// new mailbox rather than resuming a failed one.
var (
	// ErrNoDomainAvailable is returned when the mail provider lists no
	// domains to register under.
	ErrNoDomainAvailable = errors.New("no mail domain available")

	// ErrVerificationTimeout is returned when no verification code arrives
	// before the polling timeout.
	ErrVerificationTimeout = errors.New("verification code not received before timeout")

	// ErrSessionExtractionFailed is returned when the verification callback
	// succeeds but no session credential can be extracted.
	ErrSessionExtractionFailed = errors.New("failed to extract session credential")
)

// state tracks progress through the provisioning flow. The flow is terminal
// on stateSessionEstablished or on the first error.
type state string

const (
	stateCreated               state = "created"
	stateMailboxRegistered     state = "mailbox_registered"
	stateVerificationRequested state = "verification_requested"
	stateVerificationReceived  state = "verification_received"
	stateSessionEstablished    state = "session_established"
)

// localPartLength is the length of the generated mailbox local part.
const localPartLength = 12

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// MailClient is the mailbox provider surface the provisioner needs.
type MailClient interface {
	Domains(ctx context.Context) ([]mailtm.Domain, error)
	CreateAccount(ctx context.Context, address, password string) error
	Token(ctx context.Context, address, password string) (string, error)
	Messages(ctx context.Context, token string) ([]mailtm.Message, error)
	Message(ctx context.Context, token, id string) (*mailtm.MessageDetail, error)
}

// AuthClient is the generation provider surface the provisioner needs.
type AuthClient interface {
	NewSession(ctx context.Context) (*nanabanana.Session, error)
	RequestVerification(ctx context.Context, sess *nanabanana.Session, email string) error
	VerifyEmail(ctx context.Context, sess *nanabanana.Session, email, code string) error
}

// Credentials is the output of a successful provisioning flow.
type Credentials struct {
	Email        string
	Password     string
	SessionToken string
}

// Config holds the provisioner's tunables.
type Config struct {
	// SenderDomain identifies verification mail by substring match on the
	// sender address (e.g. "nanabanana.ai").
	SenderDomain string

	// PollInterval is the delay between mailbox checks. Zero applies the
	// poll package default.
	PollInterval time.Duration

	// PollTimeout bounds the wait for the verification code. Zero applies
	// the poll package default.
	PollTimeout time.Duration
}

// Provisioner drives the provisioning state machine against the mailbox
// provider and the generation provider.
type Provisioner struct {
	mail     MailClient
	provider AuthClient
	cfg      Config
	logger   *slog.Logger
}

// NewProvisioner creates a Provisioner.
// If logger is nil the default logger is used.
func NewProvisioner(mail MailClient, provider AuthClient, cfg Config, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		mail:     mail,
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "provisioner")),
	}
}

// Provision runs the whole flow as one bounded sequential operation:
// mailbox creation, provider registration, verification code interception
// and session extraction. There is no outer retry; any step's failure ends
// the flow.
func (p *Provisioner) Provision(ctx context.Context) (*Credentials, error) {
	log := p.logger
	log.Info("provisioning started", "state", stateCreated)

	// Created: pick a domain, mint credentials.
	domains, err := p.mail.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mail domains: %w", err)
	}
	if len(domains) == 0 {
		return nil, ErrNoDomainAvailable
	}

	email := randomLocalPart() + "@" + domains[0].Domain
	password := randomPassword()

	// MailboxRegistered: register the mailbox and obtain its access token.
	if err := p.mail.CreateAccount(ctx, email, password); err != nil {
		return nil, fmt.Errorf("register mailbox: %w", err)
	}

	mailToken, err := p.mail.Token(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("obtain mailbox token: %w", err)
	}
	log.Info("mailbox registered", "state", stateMailboxRegistered, "email", email)

	// VerificationRequested: CSRF handshake, then ask for the code.
	sess, err := p.provider.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("start provider session: %w", err)
	}

	if err := p.provider.RequestVerification(ctx, sess, email); err != nil {
		return nil, fmt.Errorf("request verification email: %w", err)
	}
	log.Info("verification requested", "state", stateVerificationRequested)

	// VerificationReceived: poll the mailbox for the provider's mail and
	// extract the 6-digit code from its body.
	code, err := p.waitForCode(ctx, mailToken)
	if err != nil {
		return nil, err
	}
	log.Info("verification code received", "state", stateVerificationReceived)

	// SessionEstablished: complete the handshake and extract the session
	// credential.
	if err := p.provider.VerifyEmail(ctx, sess, email, code); err != nil {
		if errors.Is(err, nanabanana.ErrNoSessionCookie) {
			return nil, ErrSessionExtractionFailed
		}
		return nil, fmt.Errorf("verification callback: %w", err)
	}
	if sess.SessionToken == "" {
		return nil, ErrSessionExtractionFailed
	}
	log.Info("provisioning finished", "state", stateSessionEstablished, "email", email)

	return &Credentials{
		Email:        email,
		Password:     password,
		SessionToken: sess.SessionToken,
	}, nil
}

// waitForCode polls the mailbox until a message from the provider's domain
// carries a 6-digit code, or the timeout elapses.
func (p *Provisioner) waitForCode(ctx context.Context, mailToken string) (string, error) {
	fetch := func(ctx context.Context) ([]mailtm.Message, error) {
		return p.mail.Messages(ctx, mailToken)
	}
	fromProvider := func(msg mailtm.Message) bool {
		return strings.Contains(msg.From.Address, p.cfg.SenderDomain)
	}

	cfg := poll.Config{
		Interval: p.cfg.PollInterval,
		Timeout:  p.cfg.PollTimeout,
		Logger:   p.logger,
	}

	msg, ok, err := poll.WaitFor(ctx, cfg, fetch, fromProvider)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrVerificationTimeout
	}

	detail, err := p.mail.Message(ctx, mailToken, msg.ID)
	if err != nil {
		return "", fmt.Errorf("fetch verification message: %w", err)
	}

	code := codePattern.FindString(detail.Text)
	if code == "" {
		return "", ErrVerificationTimeout
	}
	return code, nil
}

// randomLocalPart returns a fixed-length lowercase alphanumeric local part.
func randomLocalPart() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz1234567890"

	b := make([]byte, localPartLength)
	for i := range b {
		b[i] = alphabet[randomInt(len(alphabet))]
	}
	return string(b)
}

// randomPassword returns a password satisfying the mail provider's
// complexity rule: an uppercase prefix, four digits and a symbol.
func randomPassword() string {
	return fmt.Sprintf("Pass%04d!", 1000+randomInt(9000))
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; nothing sensible to fall back to for credential material.
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return int(v.Int64())
}
