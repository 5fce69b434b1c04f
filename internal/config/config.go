package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет структуру конфигурации для приложения.
type Config struct {
	App struct {
		Port            string `mapstructure:"port"`
		Env             string `mapstructure:"env"`
		ReadTimeout     int    `mapstructure:"readTimeout"`
		WriteTimeout    int    `mapstructure:"writeTimeout"`
		ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	} `mapstructure:"app"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Paystack struct {
		// WebhookSecret общий секрет для проверки подписи вебхуков,
		// передается обработчику через конфигурацию, а не через
		// глобальную константу.
		WebhookSecret string `mapstructure:"webhookSecret"`
	} `mapstructure:"paystack"`
	Payment struct {
		TaxRate  float64 `mapstructure:"taxRate"` // процент налога, 0 отключает
		Currency string  `mapstructure:"currency"`
	} `mapstructure:"payment"`
	Referral struct {
		Enabled bool   `mapstructure:"enabled"`
		Policy  string `mapstructure:"policy"` // "first" или любое другое значение = каждый платеж
	} `mapstructure:"referral"`
}

// LoadConfig загружает конфигурацию из файла или переменных окружения.
func LoadConfig(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env не обязателен, отсутствие файла не ошибка
		_ = godotenv.Load(path)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.readTimeout", 10)
	viper.SetDefault("app.writeTimeout", 10)
	viper.SetDefault("app.shutdownTimeout", 15)
	viper.SetDefault("payment.currency", "USD")
	viper.SetDefault("referral.policy", "first")

	viper.AutomaticEnv() // Чтение переменных окружения

	if err := viper.ReadInConfig(); err != nil {
		// Файл конфигурации не обязателен, если заданы переменные окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
