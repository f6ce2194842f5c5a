package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// LogFile is an optional path for a rotated JSON log file.
	LogFile string `mapstructure:"LOG_FILE"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// SiteName is sent to the courier as the online store name.
	SiteName string `mapstructure:"SITE_NAME" default:"WooCommerce Store"`

	// Security holds admin and nonce settings.
	Security SecurityConfig `mapstructure:",squash"`

	// Storage holds Redis and MongoDB connection details.
	Storage StorageConfig `mapstructure:",squash"`

	// WooCommerce holds the WooCommerce API configuration.
	WooCommerce WooCommerceConfig `mapstructure:",squash"`

	// PostNet holds the courier endpoints and timeouts.
	PostNet PostNetConfig `mapstructure:",squash"`

	// Maps holds the maps provider endpoints.
	Maps MapsConfig `mapstructure:",squash"`
}

// SecurityConfig holds the admin and host tokens and the nonce lifetime.
type SecurityConfig struct {
	// AdminToken authorizes calls to /admin endpoints (Bearer token).
	AdminToken string `mapstructure:"ADMIN_TOKEN" required:"true"`
	// HostToken authorizes the server-to-server hooks called by the shop host (Bearer token).
	HostToken string `mapstructure:"HOST_TOKEN" required:"true"`
	// NonceTTLSeconds is how long an issued nonce stays valid.
	NonceTTLSeconds int `mapstructure:"NONCE_TTL_SECONDS" default:"43200"`
}

// StorageConfig holds database connection details.
type StorageConfig struct {
	// RedisURL is the Redis connection string (redis://[:password@]host[:port][/db]).
	RedisURL string `mapstructure:"REDIS_URL" required:"true"`
	// FeeStore selects the product fee table backend: "redis" or "mongo".
	FeeStore string `mapstructure:"FEE_STORE" default:"redis"`
	// MongoURI is the MongoDB connection string, used when FeeStore is "mongo".
	MongoURI string `mapstructure:"MONGO_URI" default:"mongodb://localhost:27017"`
	// MongoDatabase is the database holding the product fee collection.
	MongoDatabase string `mapstructure:"MONGO_DATABASE" default:"postnet_delivery"`
}

// WooCommerceConfig holds the credentials for the WooCommerce Store.
type WooCommerceConfig struct {
	// URL is the base URL of the WooCommerce store.
	URL string `mapstructure:"WC_URL" required:"true"`
	// ConsumerKey is the public key for API access.
	ConsumerKey string `mapstructure:"WC_CONSUMER_KEY" required:"true"`
	// ConsumerSecret is the secret key for API access.
	ConsumerSecret string `mapstructure:"WC_CONSUMER_SECRET" required:"true"`
}

// PostNetConfig holds the PostNet API endpoints.
type PostNetConfig struct {
	StoresURL       string `mapstructure:"POSTNET_STORES_URL" default:"https://www.postnet.co.za/cart_store-json_list/"`
	StoreLocatorURL string `mapstructure:"POSTNET_STORE_LOCATOR_URL" default:"https://postnet.co.za/courier_package-calculate/"`
	// StoreDetailsURL is optional; when empty, details are resolved from the store list.
	StoreDetailsURL string `mapstructure:"POSTNET_STORE_DETAILS_URL"`
	IsMainURL       string `mapstructure:"POSTNET_IS_MAIN_URL" default:"https://pnsa.restapis.co.za/public/is-main"`
	DispatchURL     string `mapstructure:"POSTNET_DISPATCH_URL" default:"https://www.postnet.co.za/postnet_api-process_plugin_order"`

	StoresCacheTTLSeconds    int `mapstructure:"STORES_CACHE_TTL_SECONDS" default:"86400"`
	DirectoryTimeoutSeconds  int `mapstructure:"DIRECTORY_TIMEOUT_SECONDS" default:"15"`
	ClassifierTimeoutSeconds int `mapstructure:"CLASSIFIER_TIMEOUT_SECONDS" default:"5"`
	DispatchTimeoutSeconds   int `mapstructure:"DISPATCH_TIMEOUT_SECONDS" default:"45"`
}

// MapsConfig holds the maps provider configuration.
type MapsConfig struct {
	// GeocodeURL is the endpoint used to validate maps API keys.
	GeocodeURL string `mapstructure:"GOOGLE_GEOCODE_URL" default:"https://maps.googleapis.com/maps/api/geocode/json"`
}

// NonceTTL returns the nonce lifetime.
func (s SecurityConfig) NonceTTL() time.Duration {
	return time.Duration(s.NonceTTLSeconds) * time.Second
}

// StoresCacheTTL returns how long the full store list is cached.
func (p PostNetConfig) StoresCacheTTL() time.Duration {
	return time.Duration(p.StoresCacheTTLSeconds) * time.Second
}

// DirectoryTimeout returns the store directory HTTP timeout.
func (p PostNetConfig) DirectoryTimeout() time.Duration {
	return time.Duration(p.DirectoryTimeoutSeconds) * time.Second
}

// ClassifierTimeout returns the region classifier HTTP timeout.
func (p PostNetConfig) ClassifierTimeout() time.Duration {
	return time.Duration(p.ClassifierTimeoutSeconds) * time.Second
}

// DispatchTimeout returns the order dispatch HTTP timeout.
func (p PostNetConfig) DispatchTimeout() time.Duration {
	return time.Duration(p.DispatchTimeoutSeconds) * time.Second
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if config.Storage.FeeStore != "redis" && config.Storage.FeeStore != "mongo" {
		return nil, fmt.Errorf("invalid FEE_STORE %q: must be redis or mongo", config.Storage.FeeStore)
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind env %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
