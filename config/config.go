package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the environment configuration shared by every handler.
type Config struct {
	Env            string `mapstructure:"SHOWROOM_ENV"`
	Region         string `mapstructure:"AWS_REGION"`
	DynamoEndpoint string `mapstructure:"DYNAMO_ENDPOINT"`

	BookingsTable string `mapstructure:"BOOKINGS_TABLE"`
	CarsTable     string `mapstructure:"CARS_TABLE"`
	UsersTable    string `mapstructure:"USERS_TABLE"`
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment. Lambda supplies
// everything through environment variables; the defaults cover local runs
// against dynamodb-local.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SHOWROOM_ENV", "development")
	v.SetDefault("AWS_REGION", "eu-west-3")
	v.SetDefault("DYNAMO_ENDPOINT", "")
	v.SetDefault("BOOKINGS_TABLE", "dev-bookings")
	v.SetDefault("CARS_TABLE", "dev-cars")
	v.SetDefault("USERS_TABLE", "dev-users")

	// viper only unmarshals keys it has seen; Get pulls the env values in.
	for _, key := range []string{
		"SHOWROOM_ENV", "AWS_REGION", "DYNAMO_ENDPOINT",
		"BOOKINGS_TABLE", "CARS_TABLE", "USERS_TABLE",
	} {
		v.Set(key, v.Get(key))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
