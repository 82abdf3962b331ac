package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"rollhook-bot/config"
	"rollhook-bot/internal/core/service/discord"
	"rollhook-bot/internal/core/service/roll"
	"rollhook-bot/internal/lib/database"
	"rollhook-bot/internal/lib/dice"
	"rollhook-bot/internal/lib/metrics"
	"rollhook-bot/internal/lib/tasks"
	"rollhook-bot/logging"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.SetupLogger(logging.DefaultLogDir, "info")
	logger.Info("rollhook-bot")

	configData := config.LoadConfig()
	logging.Reconfigure(configData.LogDir, configData.LogLevel)

	dbHandlers, err := database.InitDB(configData.DatabasePath)
	if err != nil {
		logging.Log("Database", logrus.FatalLevel, fmt.Sprintf("Ошибка инициализации базы данных: %v", err))
	}

	historyQueue := tasks.NewQueue("History", configData.HistoryWorkers, configData.HistoryQueueSize, configData.HistoryAttempts)
	historyQueue.OnDone = func(name string, err error) {
		if err != nil {
			metrics.HistoryWrites.WithLabelValues("failed").Inc()
			return
		}
		metrics.HistoryWrites.WithLabelValues("ok").Inc()
	}

	discordBot, err := discord.NewDiscordBot(configData.DiscordToken, discord.Options{
		ProxyHookName:     configData.ProxyHookName,
		RelayHookName:     configData.RelayHookName,
		CommandPrefix:     configData.CommandPrefix,
		EditCommandPrefix: configData.EditCommandPrefix,
		ProxyBotID:        configData.ProxyBotID,
		ProxyBotErrorText: configData.ProxyBotErrorText,
		EditTimeout:       configData.EditTimeout,
		ProbeTimeout:      configData.ProbeTimeout,
	}, discord.Deps{
		Configs:   dbHandlers.ConfigHandlers,
		History:   dbHandlers.HistoryHandlers,
		Evaluator: roll.NewEvaluator(dice.NewRoller()),
		Tasks:     historyQueue,
	})
	if err != nil {
		logging.Log("Discord", logrus.FatalLevel, fmt.Sprintf("%v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return discordBot.Run(ctx)
	})

	if configData.MetricsAddr != "" {
		server := &http.Server{Addr: configData.MetricsAddr, Handler: metricsMux()}
		g.Go(func() error {
			logging.Log("Metrics", logrus.InfoLevel, fmt.Sprintf("Метрики доступны на %s/metrics", configData.MetricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("сервер метрик: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	logging.Log("Система", logrus.InfoLevel, "Бот приступил к работе...")

	if err := g.Wait(); err != nil {
		logging.Log("Система", logrus.ErrorLevel, fmt.Sprintf("Остановка с ошибкой: %v", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := historyQueue.Close(shutdownCtx); err != nil {
		logging.Log("History", logrus.WarnLevel, fmt.Sprintf("Не все записи истории сохранены: %v", err))
	}
	if err := database.Close(dbHandlers); err != nil {
		logging.Log("Database", logrus.WarnLevel, fmt.Sprintf("Ошибка закрытия базы данных: %v", err))
	}

	logging.Log("Система", logrus.InfoLevel, "Бот остановлен")
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
