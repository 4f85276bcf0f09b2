package model

// ServerSettings holds the host part of an SMTP or IMAP connection.
type ServerSettings struct {
	Server string `json:"server"`
	Port   string `json:"port"`
	TLS    bool   `json:"tls"`
}

// Settings is the account configuration used for sending and reading mail.
// The backend performs the actual SMTP/IMAP work; these values are
// forwarded with each request.
type Settings struct {
	User     string         `json:"user"`
	Password string         `json:"-"`
	SMTP     ServerSettings `json:"smtp"`
	IMAP     ServerSettings `json:"imap"`
}

// SMTPComplete reports whether every field needed to talk to SMTP is set.
func (s Settings) SMTPComplete() bool {
	return s.SMTP.Server != "" && s.SMTP.Port != "" &&
		s.User != "" && s.Password != ""
}

// IMAPComplete reports whether every field needed to read the mailbox is set.
func (s Settings) IMAPComplete() bool {
	return s.IMAP.Server != "" && s.IMAP.Port != "" &&
		s.User != "" && s.Password != ""
}

// Setting keys used by the local settings table.
const (
	SettingSMTPServer = "smtp_server"
	SettingSMTPPort   = "smtp_port"
	SettingSMTPTLS    = "smtp_tls"
	SettingIMAPServer = "imap_server"
	SettingIMAPPort   = "imap_port"
	SettingIMAPTLS    = "imap_tls"
	SettingUser       = "user"
)

// Provider is a well-known mail host preset.
type Provider struct {
	Key  string
	Name string
	SMTP ServerSettings
	IMAP ServerSettings
}

// ProviderCustom leaves host settings untouched when applied.
const ProviderCustom = "custom"

// Providers lists the presets in the order they are offered.
var Providers = []Provider{
	{
		Key:  "gmail",
		Name: "Gmail",
		SMTP: ServerSettings{Server: "smtp.gmail.com", Port: "587", TLS: true},
		IMAP: ServerSettings{Server: "imap.gmail.com", Port: "993", TLS: true},
	},
	{
		Key:  "outlook",
		Name: "Outlook",
		SMTP: ServerSettings{Server: "smtp.office365.com", Port: "587", TLS: true},
		IMAP: ServerSettings{Server: "outlook.office365.com", Port: "993", TLS: true},
	},
	{
		Key:  "yahoo",
		Name: "Yahoo",
		SMTP: ServerSettings{Server: "smtp.mail.yahoo.com", Port: "587", TLS: true},
		IMAP: ServerSettings{Server: "imap.mail.yahoo.com", Port: "993", TLS: true},
	},
	{
		Key:  ProviderCustom,
		Name: "Custom",
		SMTP: ServerSettings{TLS: true},
		IMAP: ServerSettings{TLS: true},
	},
}

// LookupProvider returns the preset registered under key.
func LookupProvider(key string) (Provider, bool) {
	for _, p := range Providers {
		if p.Key == key {
			return p, true
		}
	}
	return Provider{}, false
}
