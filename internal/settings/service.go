// Package settings loads and persists the mail account settings. Host
// settings live in the local database; the password lives in the keyring.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/nhle/mailfront/internal/credential"
	"github.com/nhle/mailfront/internal/model"
)

// KV is the key/value part of the local store used for settings.
type KV interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Secrets stores the account password.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ErrUnknownProvider is returned by ApplyProvider for an unregistered key.
var ErrUnknownProvider = errors.New("unknown mail provider")

// Patch is a partial settings update. Nil fields are left untouched.
type Patch struct {
	SMTPServer *string
	SMTPPort   *string
	SMTPTLS    *bool
	IMAPServer *string
	IMAPPort   *string
	IMAPTLS    *bool
	User       *string
	Password   *string
}

// PatchFrom returns a patch that sets every field to the values in s.
func PatchFrom(s model.Settings) Patch {
	return Patch{
		SMTPServer: &s.SMTP.Server,
		SMTPPort:   &s.SMTP.Port,
		SMTPTLS:    &s.SMTP.TLS,
		IMAPServer: &s.IMAP.Server,
		IMAPPort:   &s.IMAP.Port,
		IMAPTLS:    &s.IMAP.TLS,
		User:       &s.User,
		Password:   &s.Password,
	}
}

// Service holds the current settings and writes every change through to
// storage. It is safe for concurrent use.
type Service struct {
	kv      KV
	secrets Secrets

	mu      sync.Mutex
	current model.Settings
}

// NewService returns a Service with TLS enabled and everything else empty
// until Load is called.
func NewService(kv KV, secrets Secrets) *Service {
	return &Service{
		kv:      kv,
		secrets: secrets,
		current: defaults(),
	}
}

func defaults() model.Settings {
	return model.Settings{
		SMTP: model.ServerSettings{TLS: true},
		IMAP: model.ServerSettings{TLS: true},
	}
}

// Current returns the last loaded or updated settings.
func (s *Service) Current() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Load reads persisted settings. Keys that were never stored keep their
// defaults. A keyring that cannot be read leaves the password empty.
func (s *Service) Load(ctx context.Context) (model.Settings, error) {
	stored, err := s.kv.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("loading settings: %w", err)
	}

	loaded := defaults()
	loaded.SMTP.Server = stored[model.SettingSMTPServer]
	loaded.SMTP.Port = stored[model.SettingSMTPPort]
	loaded.IMAP.Server = stored[model.SettingIMAPServer]
	loaded.IMAP.Port = stored[model.SettingIMAPPort]
	loaded.User = stored[model.SettingUser]
	if v, ok := stored[model.SettingSMTPTLS]; ok {
		loaded.SMTP.TLS = parseBool(v, true)
	}
	if v, ok := stored[model.SettingIMAPTLS]; ok {
		loaded.IMAP.TLS = parseBool(v, true)
	}

	password, err := s.secrets.Get(credential.PasswordKey)
	switch {
	case err == nil:
		loaded.Password = password
	case errors.Is(err, credential.ErrNotFound):
	default:
		slog.WarnContext(ctx, "reading account password", "error", err)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	return loaded, nil
}

// Update applies p, persisting each field it sets, and returns the
// resulting settings. Fields written before a failing one stay applied.
func (s *Service) Update(ctx context.Context, p Patch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	writes := []struct {
		key   string
		value *string
		apply func(string)
	}{
		{model.SettingSMTPServer, trimmed(p.SMTPServer), func(v string) { next.SMTP.Server = v }},
		{model.SettingSMTPPort, trimmed(p.SMTPPort), func(v string) { next.SMTP.Port = v }},
		{model.SettingSMTPTLS, boolString(p.SMTPTLS), func(v string) { next.SMTP.TLS = v == "true" }},
		{model.SettingIMAPServer, trimmed(p.IMAPServer), func(v string) { next.IMAP.Server = v }},
		{model.SettingIMAPPort, trimmed(p.IMAPPort), func(v string) { next.IMAP.Port = v }},
		{model.SettingIMAPTLS, boolString(p.IMAPTLS), func(v string) { next.IMAP.TLS = v == "true" }},
		{model.SettingUser, trimmed(p.User), func(v string) { next.User = v }},
	}

	for _, w := range writes {
		if w.value == nil {
			continue
		}
		if err := s.kv.SetSetting(ctx, w.key, *w.value); err != nil {
			s.current = next
			return next, fmt.Errorf("saving setting %s: %w", w.key, err)
		}
		w.apply(*w.value)
	}

	if p.Password != nil {
		if err := s.savePassword(*p.Password); err != nil {
			s.current = next
			return next, err
		}
		next.Password = *p.Password
	}

	s.current = next
	return next, nil
}

func (s *Service) savePassword(password string) error {
	if password == "" {
		if err := s.secrets.Delete(credential.PasswordKey); err != nil {
			return fmt.Errorf("clearing account password: %w", err)
		}
		return nil
	}
	if err := s.secrets.Set(credential.PasswordKey, password); err != nil {
		return fmt.Errorf("saving account password: %w", err)
	}
	return nil
}

// ApplyProvider fills the SMTP and IMAP host settings from a preset.
// The custom preset changes nothing.
func (s *Service) ApplyProvider(ctx context.Context, key string) (model.Settings, error) {
	if key == model.ProviderCustom {
		return s.Current(), nil
	}

	p, ok := model.LookupProvider(key)
	if !ok {
		return s.Current(), fmt.Errorf("%w: %q", ErrUnknownProvider, key)
	}

	return s.Update(ctx, Patch{
		SMTPServer: &p.SMTP.Server,
		SMTPPort:   &p.SMTP.Port,
		SMTPTLS:    &p.SMTP.TLS,
		IMAPServer: &p.IMAP.Server,
		IMAPPort:   &p.IMAP.Port,
		IMAPTLS:    &p.IMAP.TLS,
	})
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func boolString(v *bool) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatBool(*v)
	return &s
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
