package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuristatech/legalchat/server"
	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
	"github.com/iuristatech/legalchat/store/db"
)

const greetingBanner = `
legalchat - asistencia legal inteligente
`

var rootCmd = &cobra.Command{
	Use:   "legalchat",
	Short: "Legal-assistance chat backend",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serverProfile, err := profile.GetProfile()
		if err != nil {
			slog.Error("failed to resolve profile", "err", err)
			return
		}

		driver, err := db.NewDBDriver(serverProfile)
		if err != nil {
			slog.Error("failed to create database driver", "err", err)
			return
		}
		storeInstance := store.New(driver, serverProfile)

		s, err := server.NewServer(ctx, serverProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "err", err)
			return
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			slog.Info("received signal, shutting down", "signal", sig.String())
			s.Shutdown(ctx)
			cancel()
		}()

		fmt.Print(greetingBanner + "\n")
		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "err", err)
			return
		}
		<-ctx.Done()
	},
}

func init() {
	// A .env in the working directory seeds the environment; absent is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix("legalchat")
	// Dashed flag names map to underscored env vars
	// (deepseek-api-key ← LEGALCHAT_DEEPSEEK_API_KEY).
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite", "mysql" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign access tokens")
	rootCmd.PersistentFlags().String("deepseek-api-key", "", "DeepSeek API key")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")

	for _, flag := range []string{
		"mode", "addr", "port", "data", "driver", "dsn", "secret",
		"deepseek-api-key", "openai-api-key",
	} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", "err", err)
		os.Exit(1)
	}
}
