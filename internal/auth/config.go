package auth

// Config tunes the gateway.
type Config struct {
	BcryptCost       int  `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	SendWelcomeEmail bool `env:"AUTH_SEND_WELCOME_EMAIL" envDefault:"false"`
	// MaxPictureBytes caps decoded data URI profile pictures.
	MaxPictureBytes int `env:"AUTH_MAX_PICTURE_BYTES" envDefault:"5242880"`
}

// DefaultConfig matches the env defaults.
func DefaultConfig() Config {
	return Config{
		BcryptCost:      10,
		MaxPictureBytes: 5 << 20,
	}
}
