package postmark

import "strings"

// Config holds Postmark credentials and sender identity.
type Config struct {
	Provider             string `env:"EMAIL_PROVIDER"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"EMAIL_FROM"`
	SenderName           string `env:"EMAIL_SENDER_NAME" envDefault:"Crave Corner"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
}

// Enabled reports whether Postmark should be tried before SMTP: a server
// token is present and EMAIL_PROVIDER does not name another provider.
func (c Config) Enabled() bool {
	if c.PostmarkServerToken == "" {
		return false
	}
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	return p == "" || p == "postmark"
}
