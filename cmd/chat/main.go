package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/render"
	"portfolio-chat/internal/session"
	"portfolio-chat/internal/setup"
	"portfolio-chat/internal/setup/logger"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg := config.Load()
	appLogger := logger.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, cfg.LogLevel)

	ctx := context.Background()
	deps, err := setup.Wire(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	if err := run(ctx, deps); err != nil {
		log.Fatal().Err(err).Msg("Chat client failed")
	}
}

func run(ctx context.Context, deps *setup.Dependencies) error {
	controller := deps.Controller
	renderer := render.New(os.Stdout, deps.Modes)

	fmt.Println("Portfolio Assistant")
	fmt.Println("Type a question, or /help for commands.")
	fmt.Println()
	renderer.History(controller.Messages())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Printf("[%s] > ", controller.Mode())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := command(ctx, line, controller, renderer, deps, scanner); quit {
				return nil
			}
			continue
		}

		if err := controller.Submit(ctx, line); err != nil {
			if errors.Is(err, session.ErrTurnInFlight) {
				fmt.Println("Still waiting for the previous answer.")
			}
			continue
		}

		messages := controller.Messages()
		if len(messages) > 0 {
			renderer.Message(messages[len(messages)-1])
		}
	}
}

func command(ctx context.Context, line string, controller *session.Controller, renderer *render.Renderer, deps *setup.Dependencies, scanner *bufio.Scanner) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		printHelp()
	case "/modes":
		renderer.Modes(controller.Mode())
	case "/mode":
		if len(fields) < 2 {
			fmt.Println("Usage: /mode <recruiter|engineer|ama>")
			return false
		}
		mode := models.InteractionMode(fields[1])
		if err := controller.ChangeMode(ctx, mode); err != nil {
			fmt.Println(err)
			return false
		}
		profile := deps.Modes.Profile(mode)
		fmt.Printf("Mode set to %s %s\n", profile.Icon, profile.Label)
	case "/score":
		renderer.ScorePanel(controller.LatestScore(), controller.Mode())
	case "/clear":
		fmt.Print("Clear all chat history? This cannot be undone. [y/N] ")
		if !scanner.Scan() {
			return true
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		confirmed := answer == "y" || answer == "yes"
		if err := controller.Clear(ctx, confirmed); err != nil {
			fmt.Println("History kept.")
			return false
		}
		fmt.Println("Chat history cleared.")
	case "/health":
		if err := deps.Gateway.Health(ctx); err != nil {
			fmt.Printf("Assistant unreachable: %v\n", err)
		} else {
			fmt.Println("Assistant is up.")
		}
	default:
		fmt.Printf("Unknown command %s, try /help\n", fields[0])
	}
	return false
}

func printHelp() {
	fmt.Println(`Commands:
  /mode <m>   switch interaction mode (recruiter, engineer, ama)
  /modes      list interaction modes
  /score      show the quality panel for the latest answer
  /clear      wipe the conversation history
  /health     ping the assistant service
  /quit       leave`)
}
