package devops

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ServerConfig is the deployed server configuration, stored as YAML in a
// single SSM parameter. Local development uses env vars instead.
type ServerConfig struct {
	DSN           string `yaml:"dsn"`
	SigningSecret string `yaml:"signingSecret"`
	Listen        string `yaml:"listen"`
}

var (
	once    sync.Once
	cfg     *ServerConfig
	loadErr error
)

// LoadServerConfig fetches and caches the YAML config from the
// "vbdreport" SSM parameter (decrypted).
func LoadServerConfig(ctx context.Context) (*ServerConfig, error) {
	once.Do(func() {
		paramName := "vbdreport"

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(awsCfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed ServerConfig
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}

		cfg = &parsed
	})

	return cfg, loadErr
}
