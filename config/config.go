package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Vapi         Vapi
	SSLCommerz   SSLCommerz
	GeminiApiKey string
	JWTSecret    string
	FrontendURL  string
}

type Server struct {
	Port string
	// PublicURL is the externally reachable base URL, used when the
	// payment gateway needs to call back into this server.
	PublicURL string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Vapi holds the global voice-vendor credentials. Visa types may carry
// their own keys which take precedence over these.
type Vapi struct {
	BaseURL     string
	PublicKey   string
	AssistantID string
	PrivateKey  string
}

type SSLCommerz struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
	BaseURL       string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_PUBLIC_URL", "http://localhost:8080")
	viper.SetDefault("VAPI_BASE_URL", "https://api.vapi.ai")
	viper.SetDefault("SSLCOMMERZ_IS_SANDBOX", true)
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.PublicURL = viper.GetString("SERVER_PUBLIC_URL")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Vapi.BaseURL = viper.GetString("VAPI_BASE_URL")
	config.Vapi.PublicKey = viper.GetString("VAPI_PUBLIC_KEY")
	config.Vapi.AssistantID = viper.GetString("VAPI_ASSISTANT_ID")
	config.Vapi.PrivateKey = viper.GetString("VAPI_PRIVATE_KEY")

	config.SSLCommerz.StoreID = viper.GetString("SSLCOMMERZ_STORE_ID")
	config.SSLCommerz.StorePassword = viper.GetString("SSLCOMMERZ_STORE_PASSWORD")
	config.SSLCommerz.Sandbox = viper.GetBool("SSLCOMMERZ_IS_SANDBOX")
	config.SSLCommerz.BaseURL = viper.GetString("SSLCOMMERZ_BASE_URL")
	if config.SSLCommerz.BaseURL == "" {
		if config.SSLCommerz.Sandbox {
			config.SSLCommerz.BaseURL = "https://sandbox.sslcommerz.com"
		} else {
			config.SSLCommerz.BaseURL = "https://securepay.sslcommerz.com"
		}
	}

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.JWTSecret = viper.GetString("JWT_SECRET")
	config.FrontendURL = viper.GetString("FRONTEND_URL")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
