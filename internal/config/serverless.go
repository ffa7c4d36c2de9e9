package config

import (
	"os"
	"sync"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// Global serverless configuration
var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// lambdaWritableDir is the only writable filesystem location inside Lambda
const lambdaWritableDir = "/tmp"

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = &ServerlessConfig{
			IsLambda:     isRunningInLambda(),
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       os.Getenv("AWS_REGION"),
			Stage:        GetEnv("STAGE", "dev"),
		}
	})
	return serverlessConfig
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for serverless deployment
func AdaptConfigForServerless(config *Config, sc *ServerlessConfig) *Config {
	if sc == nil || !sc.IsLambda {
		return config
	}

	// The packaged filesystem is read-only; keep the database on EFS when
	// mounted, otherwise in /tmp for the lifetime of the execution environment.
	if config.Database.Path == DefaultDatabaseConfig().Path {
		if efs := os.Getenv("EFS_MOUNT_PATH"); efs != "" {
			config.Database.Path = efs + "/storefront.db"
		} else {
			config.Database.Path = lambdaWritableDir + "/storefront.db"
		}
	}

	// API Gateway stages prefix every path with the stage name
	if config.RoutePrefix == "" && sc.Stage != "" && GetEnvAsBool("STRIP_STAGE_PREFIX", false) {
		config.RoutePrefix = "/" + sc.Stage
	}

	if config.Log.Format == "text" {
		config.Log.Format = "json"
	}

	return config
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(config, GetServerlessConfig()), nil
}
