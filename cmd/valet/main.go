package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/valet/pkg/actions"
	"github.com/go-go-golems/valet/pkg/calendar"
	"github.com/go-go-golems/valet/pkg/conversation"
	"github.com/go-go-golems/valet/pkg/dispatch"
	"github.com/go-go-golems/valet/pkg/engine"
	"github.com/go-go-golems/valet/pkg/events"
	"github.com/go-go-golems/valet/pkg/mail"
	"github.com/go-go-golems/valet/pkg/prompt"
	"github.com/go-go-golems/valet/pkg/search"
	"github.com/go-go-golems/valet/pkg/settings"
	"github.com/go-go-golems/valet/pkg/speech"
	"github.com/go-go-golems/valet/pkg/store"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "valet",
	Short: "Conversational assistant with structured-action dispatch",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.AddCommand(chatCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context) error {
	cfg, err := settings.Load(configFile)
	if err != nil {
		return err
	}

	var docs store.Store
	if cfg.StorePath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() {
			_ = sqliteStore.Close()
		}()
		docs = sqliteStore
	} else {
		docs = store.NewMemoryStore()
	}

	var mailer mail.Mailer
	if cfg.SMTPAddr != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, nil)
	} else {
		mailer = mail.NewMemoryMailer()
	}

	videoSearcher := search.NewDuckDuckGo()
	videoSearcher.VideoOnly = true

	cal := calendar.NewMemoryCalendar()

	registry, err := actions.NewDefaultRegistry(actions.Deps{
		Store:         docs,
		Calendar:      cal,
		Searcher:      search.NewDuckDuckGo(),
		VideoSearcher: videoSearcher,
		Mailer:        mailer,
	})
	if err != nil {
		return err
	}

	builder, err := prompt.NewBuilder(registry,
		prompt.WithPersona(cfg.Persona),
		prompt.WithHistoryWindow(cfg.HistoryWindow),
	)
	if err != nil {
		return err
	}

	facts := &prompt.FactFetcher{Store: docs, Calendar: cal, Mailer: mailer}

	eng := engine.NewRetryingEngine(
		engine.NewOpenAIEngine(cfg.APIKey, cfg.BaseURL, cfg.Model),
		cfg.RetryAttempts,
		cfg.RetryBackoff,
	)

	manager := conversation.NewManager()
	if cfg.HistoryFile != "" {
		if messages, err := conversation.LoadFromFile(cfg.HistoryFile); err != nil {
			log.Warn().Err(err).Str("file", cfg.HistoryFile).Msg("could not load history")
		} else if len(messages) > 0 {
			manager.AppendMessages(messages...)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg := errgroup.Group{}

	pm := events.NewPublisherManager()
	if cfg.SpeechEnabled {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		pm.SubscribePublisher(events.TopicChat, pubSub)
		speaker := speech.NewSpeaker(
			speech.NewOpenAISynthesizer(cfg.APIKey, cfg.BaseURL, cfg.AudioDir),
			pubSub,
		)
		eg.Go(func() error {
			return speaker.Run(ctx)
		})
	}

	dispatcher := dispatch.NewDispatcher(eng, registry, builder, facts, manager,
		dispatch.WithPublisher(pm))

	ui := &input.UI{
		Writer: os.Stdout,
		Reader: os.Stdin,
	}

	fmt.Println("valet ready. Type your message, Ctrl-D to quit.")
	for {
		line, err := ui.Ask(">", &input.Options{
			HideOrder: true,
		})
		if err != nil {
			// EOF or a closed terminal ends the session.
			break
		}
		if line == "" {
			continue
		}
		reply := dispatcher.RunTurn(ctx, line, nil)
		fmt.Println(reply)
	}

	if cfg.HistoryFile != "" {
		if err := manager.SaveToFile(cfg.HistoryFile); err != nil {
			log.Warn().Err(err).Str("file", cfg.HistoryFile).Msg("could not save history")
		}
	}

	// Let the speaker drain in-flight synthesis before the process exits.
	cancel()
	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("speaker stopped with error")
	}
	return nil
}
