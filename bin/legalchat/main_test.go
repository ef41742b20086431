package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestEnvBindingForDashedKeys(t *testing.T) {
	t.Setenv("LEGALCHAT_DEEPSEEK_API_KEY", "ds-from-env")
	t.Setenv("LEGALCHAT_OPENAI_API_KEY", "oa-from-env")
	t.Setenv("LEGALCHAT_DSN", "user:pass@/legalchat")

	require.Equal(t, "ds-from-env", viper.GetString("deepseek-api-key"))
	require.Equal(t, "oa-from-env", viper.GetString("openai-api-key"))
	require.Equal(t, "user:pass@/legalchat", viper.GetString("dsn"))
}

func TestFlagDefaultsResolve(t *testing.T) {
	require.Equal(t, "dev", viper.GetString("mode"))
	require.Equal(t, 8081, viper.GetInt("port"))
	require.Equal(t, "sqlite", viper.GetString("driver"))
}
