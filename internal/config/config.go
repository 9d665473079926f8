package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Srv      *Serviceconfig
	App      *Appconfig
	Geo      *Geoconfig
	Cart     *Cartconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}
type RabbitMqconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}
type Serviceconfig struct {
	AuthServicePort       string `yaml:"auth_service"`
	AllocationServicePort string `yaml:"allocation_service"`
	OrderServicePort      string `yaml:"order_service"`
	DeliveryServicePort   string `yaml:"delivery_service"`
}
type Appconfig struct {
	JwtSecret            string `yaml:"jwt_secret"`
	SolverTimeoutSeconds int    `yaml:"solver_timeout_seconds"`
	PerKmRate            float64
}
type Geoconfig struct {
	ApiKey         string `yaml:"api_key"`
	GeocodeURL     string `yaml:"geocode_url"`
	DirectionsURL  string `yaml:"directions_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}
type Cartconfig struct {
	ExpirySeconds   int `yaml:"expiry_seconds"`
	InactiveSeconds int `yaml:"inactive_seconds"`
}
type Loggerconfig struct {
	Level string `yaml:"level"`
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "foodbridge_user"),
			Password: getEnv("DB_PASSWORD", "foodbridge_pass"),
			Database: getEnv("DB_NAME", "foodbridge_db"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Srv: &Serviceconfig{
			AuthServicePort:       getEnv("AUTH_SERVICE_PORT", "3000"),
			AllocationServicePort: getEnv("ALLOCATION_SERVICE_PORT", "3001"),
			OrderServicePort:      getEnv("ORDER_SERVICE_PORT", "3002"),
			DeliveryServicePort:   getEnv("DELIVERY_SERVICE_PORT", "3003"),
		},
		App: &Appconfig{
			JwtSecret:            getEnv("JWT_SECRET", "foodbridge-dev-secret"),
			SolverTimeoutSeconds: getEnvInt("SOLVER_TIMEOUT_SECONDS", 30),
			PerKmRate:            getEnvFloat("DELIVERY_PER_KM_RATE", 0.5),
		},
		Geo: &Geoconfig{
			ApiKey:         getEnv("GOOGLE_MAPS_API_KEY", ""),
			GeocodeURL:     getEnv("GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			DirectionsURL:  getEnv("DIRECTIONS_URL", "https://maps.googleapis.com/maps/api/directions/json"),
			TimeoutSeconds: getEnvInt("GEO_TIMEOUT_SECONDS", 10),
		},
		Cart: &Cartconfig{
			ExpirySeconds:   getEnvInt("CART_EXPIRY_SECONDS", 24*60*60),
			InactiveSeconds: getEnvInt("CART_INACTIVE_SECONDS", 12*60*60),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
