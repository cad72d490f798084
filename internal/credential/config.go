package credential

import "time"

// Config holds signing and lifetime settings for issued credentials.
type Config struct {
	SigningKey          string        `env:"JWT_SIGNING_KEY"`
	Issuer              string        `env:"JWT_ISSUER" envDefault:"cravecorner"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"24h"`
	ResetOTPTTL         time.Duration `env:"RESET_OTP_TTL" envDefault:"1h"`
}

// DefaultConfig returns the production lifetimes with no signing key.
func DefaultConfig() Config {
	return Config{
		Issuer:              "cravecorner",
		SessionTTL:          7 * 24 * time.Hour,
		VerificationCodeTTL: 24 * time.Hour,
		ResetOTPTTL:         time.Hour,
	}
}
