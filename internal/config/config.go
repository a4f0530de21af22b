package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort              = 8080
	DefaultCacheTTLSec       = 600
	DefaultSessionCookieName = "stormcom_session"
	DefaultDevSuffix         = ".localhost"
	DefaultStorePathPrefix   = "/store"
	DefaultNotFoundPath      = "/store-not-found"
	DefaultLoginPath         = "/login"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Tenant   TenantConfig
}

type ServerConfig struct {
	Env         string
	Host        string
	Port        int
	LogLevel    string
	CorsOrigins string
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	// SessionSecret is the HS256 key shared with the dashboard's session
	// issuer. Empty means every protected request redirects to login.
	SessionSecret     string
	SessionCookieName string
}

// TenantConfig is the tenant resolution surface. Root domains and the dev
// suffix decide host classification; the prefix lists decide which paths the
// resolver touches at all.
type TenantConfig struct {
	RootDomains       []string
	DevSuffix         string
	ReservedSubdomain string
	ProtectedPrefixes []string
	ExemptPrefixes    []string
	BypassPrefixes    []string
	StorePathPrefix   string
	NotFoundPath      string
	LoginPath         string
	CacheTTL          time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Env:         getEnv("APP_ENV", "development"),
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnvInt("PORT", DefaultPort),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CorsOrigins: getEnv("CORS_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			SessionSecret:     getEnv("SESSION_SECRET", ""),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", DefaultSessionCookieName),
		},
		Tenant: TenantConfig{
			RootDomains:       getEnvList("TENANT_ROOT_DOMAINS", []string{"stormcom.app", "stormcom.com", "localhost"}),
			DevSuffix:         getEnv("TENANT_DEV_SUFFIX", DefaultDevSuffix),
			ReservedSubdomain: getEnv("TENANT_RESERVED_SUBDOMAIN", "www"),
			ProtectedPrefixes: getEnvList("TENANT_PROTECTED_PREFIXES", []string{"/dashboard", "/settings", "/team", "/projects", "/products"}),
			ExemptPrefixes: getEnvList("TENANT_EXEMPT_PREFIXES", []string{
				"/login", "/signup", "/verify-email", "/api",
				"/store", "/store-not-found", "/onboarding", "/checkout",
			}),
			BypassPrefixes:  getEnvList("TENANT_BYPASS_PREFIXES", []string{"/_next", "/favicon.ico", "/api/auth"}),
			StorePathPrefix: getEnv("TENANT_STORE_PATH_PREFIX", DefaultStorePathPrefix),
			NotFoundPath:    getEnv("TENANT_NOT_FOUND_PATH", DefaultNotFoundPath),
			LoginPath:       getEnv("TENANT_LOGIN_PATH", DefaultLoginPath),
			CacheTTL:        time.Duration(getEnvInt("TENANT_CACHE_TTL", DefaultCacheTTLSec)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
