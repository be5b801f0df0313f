package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/dispatch"
	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/logging"
	"github.com/abhisek/quizbot/internal/quizgen"
	"github.com/abhisek/quizbot/internal/store"
	"github.com/abhisek/quizbot/internal/telegram"
)

const announceText = "Test Ruby quiz from bot"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Post a quiz poll on a fixed schedule until interrupted",
	RunE:  runBot,
}

func init() {
	runCmd.Flags().Bool("announce", false, "Send a test message before the first quiz")
	runCmd.Flags().Bool("once", false, "Post a single quiz right away and exit")
}

// runBot wires the generator, publisher and scheduler, then blocks until
// SIGINT or SIGTERM.
func runBot(cmd *cobra.Command, args []string) error {
	announce, _ := cmd.Flags().GetBool("announce")
	once, _ := cmd.Flags().GetBool("once")

	cfg, log, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, log)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	var eventRepo store.EventRepo
	var dopts []dispatch.Option
	if st != nil {
		defer st.Close()
		eventRepo = st.EventRepo()
		dopts = append(dopts, dispatch.WithRecorder(st.QuizRepo()))
	}
	dopts = append(dopts, dispatch.WithLogger(log))

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), eventRepo, log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	genCfg := quizgen.DefaultConfig()
	genCfg.Logger = log
	gen := quizgen.New(provider, genCfg)

	pub, err := telegram.NewPublisher(cfg.Telegram.Token, cfg.Telegram.ChatID,
		telegram.WithLogger(log),
		telegram.WithDebug(cfg.Telegram.Debug),
	)
	if err != nil {
		return err
	}
	log.WithField("bot", pub.Self()).Info("authorised on account")

	if announce {
		if err := pub.SendText(ctx, announceText); err != nil {
			log.WithError(err).Warn("failed to send test message")
		} else {
			log.Info("test message sent")
		}
	}

	d := dispatch.NewDispatcher(gen, pub, dopts...)
	if once {
		return d.Tick(ctx)
	}

	sched := &dispatch.Scheduler{
		Ticker:       d,
		InitialDelay: cfg.Schedule.FirstDelay,
		Interval:     cfg.Schedule.Interval,
	}
	log.WithFields(logrus.Fields{
		"provider": cfg.LLM.Provider,
		"model":    provider.ModelID(),
	}).Info("polling started")

	err = sched.Run(ctx)
	log.Info("shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
