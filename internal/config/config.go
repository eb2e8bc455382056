package config

import "os"

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	CORS     CORSConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type AuthConfig struct {
	JWTSecret     string
	JWTAccessTTL  string
	AdminEmail    string
	AdminPassword string
	PublicPaths   string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CORSConfig struct {
	AllowedOrigins   string
	AllowCredentials string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Host: getenv("HOST", "0.0.0.0"),
			Port: getenv("PORT", "8000"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
			JWTAccessTTL:  getenv("JWT_ACCESS_TTL", "60m"),
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
			PublicPaths:   os.Getenv("AUTH_PUBLIC_PATHS"),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getenv("CORS_ALLOWED_ORIGINS", "*"),
			AllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "true"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
