package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/callsys/callboard/internal/app"
	boardredis "github.com/callsys/callboard/internal/repository/board/redis"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	secureCookies = configVar[bool]{
		envKey:       "SERVER_SECURE_COOKIES",
		flagKey:      "secure-cookies",
		defaultValue: false,
	}
	passedLimit = configVar[int]{
		envKey:       "SERVER_PASSED_LIMIT",
		flagKey:      "passed-limit",
		defaultValue: boardredis.DefaultPassedLimit,
	}
	logLimit = configVar[int]{
		envKey:       "SERVER_LOG_LIMIT",
		flagKey:      "log-limit",
		defaultValue: boardredis.DefaultLogLimit,
	}
	featuredRetries = configVar[int]{
		envKey:       "SERVER_FEATURED_RETRIES",
		flagKey:      "featured-retries",
		defaultValue: boardredis.DefaultFeaturedAttempts,
	}
	superAdminUsername = configVar[string]{
		envKey:       "SERVER_SUPER_ADMIN_USERNAME",
		flagKey:      "super-admin-username",
		defaultValue: "",
	}
	superAdminPassword = configVar[string]{
		envKey:       "SERVER_SUPER_ADMIN_PASSWORD",
		flagKey:      "super-admin-password",
		defaultValue: "",
	}
	redisURL = configVar[string]{
		envKey:       "REDIS_URL",
		flagKey:      "redis-url",
		defaultValue: "",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	redisTLS = configVar[bool]{
		envKey:       "REDIS_TLS",
		flagKey:      "redis-tls",
		defaultValue: false,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Session signing secret")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Bool(secureCookies.flagKey, secureCookies.defaultValue, "Mark session cookies Secure")
	pflag.Int(passedLimit.flagKey, passedLimit.defaultValue, "Maximum number of passed numbers kept")
	pflag.Int(logLimit.flagKey, logLimit.defaultValue, "Maximum number of admin log entries kept")
	pflag.Int(featuredRetries.flagKey, featuredRetries.defaultValue, "Attempts for a featured list edit before reporting a conflict")
	pflag.String(superAdminUsername.flagKey, superAdminUsername.defaultValue, "Super admin created on startup")
	pflag.String(superAdminPassword.flagKey, superAdminPassword.defaultValue, "Password of the super admin created on startup")
	pflag.String(redisURL.flagKey, redisURL.defaultValue, "Redis URL, overrides host, port and password")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Bool(redisTLS.flagKey, redisTLS.defaultValue, "Connect to redis over TLS")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(secureCookies.flagKey, secureCookies.envKey)
	viper.BindEnv(passedLimit.flagKey, passedLimit.envKey)
	viper.BindEnv(logLimit.flagKey, logLimit.envKey)
	viper.BindEnv(featuredRetries.flagKey, featuredRetries.envKey)
	viper.BindEnv(superAdminUsername.flagKey, superAdminUsername.envKey)
	viper.BindEnv(superAdminPassword.flagKey, superAdminPassword.envKey)
	viper.BindEnv(redisURL.flagKey, redisURL.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(redisTLS.flagKey, redisTLS.envKey)

	viper.SetDefault(secret.flagKey, secret.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(secureCookies.flagKey, secureCookies.defaultValue)
	viper.SetDefault(passedLimit.flagKey, passedLimit.defaultValue)
	viper.SetDefault(logLimit.flagKey, logLimit.defaultValue)
	viper.SetDefault(featuredRetries.flagKey, featuredRetries.defaultValue)
	viper.SetDefault(superAdminUsername.flagKey, superAdminUsername.defaultValue)
	viper.SetDefault(superAdminPassword.flagKey, superAdminPassword.defaultValue)
	viper.SetDefault(redisURL.flagKey, redisURL.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(redisTLS.flagKey, redisTLS.defaultValue)

	config := &app.AppConfig{
		Secret:             viper.GetString(secret.flagKey),
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		SecureCookies:      viper.GetBool(secureCookies.flagKey),
		PassedLimit:        viper.GetInt(passedLimit.flagKey),
		LogLimit:           viper.GetInt(logLimit.flagKey),
		FeaturedRetries:    viper.GetInt(featuredRetries.flagKey),
		SuperAdminUsername: viper.GetString(superAdminUsername.flagKey),
		SuperAdminPassword: viper.GetString(superAdminPassword.flagKey),
		RedisURL:           viper.GetString(redisURL.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
		RedisTLS:           viper.GetBool(redisTLS.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
