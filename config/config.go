package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var (
	API_PREFIX string
	APP_PORT   string
	APP_ENV    string
	JWTSecret  string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	TenantHeader   string
	AllowedTenants []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	SeedMenus bool

	allowedOrigins map[string]bool
)

func init() {
	applyDefaults()
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	applyDefaults()
}

func applyDefaults() {
	// Server Configuration
	API_PREFIX = getEnv("API_PREFIX", "/api")
	APP_PORT = getEnv("APP_PORT", "9000")
	APP_ENV = getEnv("APP_ENV", "development")

	JWTSecret = getEnv("JWT_SECRET", "form_builder_secret")

	// Database Configuration
	DBDriver = getEnv("DB_DRIVER", "postgres")
	DBHost = getEnv("DB_HOST", "localhost")
	DBPort = getEnv("DB_PORT", "5432")
	DBUser = getEnv("DB_USER", "postgres")
	DBPassword = getEnv("DB_PASSWORD", "postgres")
	DBName = getEnv("DB_NAME", "form_builder")

	TenantHeader = getEnv("TENANT_HEADER", "X-Tenant")
	AllowedTenants = getEnvAsList("ALLOWED_TENANTS")

	// SMTP is disabled when SMTP_HOST is empty
	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	SMTPFrom = getEnv("SMTP_FROM", "no-reply@form-builder.local")

	SeedMenus = getEnvAsBool("SEED_MENUS", true)

	loadAllowedOrigins()
}

// IsProduction reports whether APP_ENV selects the production profile.
func IsProduction() bool {
	switch strings.ToLower(APP_ENV) {
	case "prod", "production":
		return true
	}
	return false
}

// TenantAllowed reports whether name may be used as a tenant database.
// The default database is always allowed.
func TenantAllowed(name string) bool {
	if name == DBName {
		return true
	}
	for _, t := range AllowedTenants {
		if t == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadAllowedOrigins() {
	allowedOrigins = make(map[string]bool)
	origins := getEnvAsList("ALLOWED_ORIGINS")

	if len(origins) == 0 {
		allowedOrigins = map[string]bool{
			"http://127.0.0.1:3000": true,
			"http://localhost:3000": true,
		}
		return
	}

	for _, origin := range origins {
		allowedOrigins[origin] = true
	}
}

func SetupCORS(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+TenantHeader)
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// preflight
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
