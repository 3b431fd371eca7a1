package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"training-plan-wizard/internal/config"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/adapter"
	"training-plan-wizard/internal/domain/ports/repository"
	"training-plan-wizard/internal/infra/adapters/genapi"
	sqlitedb "training-plan-wizard/internal/infra/db/sqlite"
	"training-plan-wizard/internal/infra/identity"
	"training-plan-wizard/internal/infra/logging"
	"training-plan-wizard/internal/infra/metrics"
	red "training-plan-wizard/internal/infra/redis"
	"training-plan-wizard/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (scripted backend, no token needed)")
	token := flag.String("token", "", "session token from the identity provider")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Identity ----
	var userID string
	if cfg.Runtime.Dev && *token == "" {
		userID = "dev-user"
	} else {
		provider := identity.NewProvider(cfg.Identity.HMACSecret)
		userID, err = provider.UserID(*token)
		if err != nil {
			log.Fatalf("identity: %v", err)
		}
	}

	// ---- Generation backend ----
	var gen adapter.GenerationService
	if cfg.Runtime.Dev && cfg.API.BaseURL == "" {
		gen = genapi.NewScripted(nil)
		logger.Info().Msg("using scripted generation backend")
	} else {
		gen, err = genapi.NewClient(cfg.API.BaseURL, *token, cfg.API.Timeout, logger)
		if err != nil {
			log.Fatalf("generation client: %v", err)
		}
	}

	// ---- Optional persistence ----
	var drafts repository.DraftRepository
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		drafts = red.NewDraftRepo(redisClient, cfg.Redis.TTL)
	}

	var history repository.SubmissionHistoryRepository
	if cfg.History.Path != "" {
		repo, err := sqlitedb.Open(cfg.History.Path)
		if err != nil {
			log.Fatalf("history: %v", err)
		}
		defer repo.Close()
		history = repo
	}

	// ---- Wizard ----
	done := make(chan struct{})
	var exitMsg string
	cb := usecase.Callbacks{
		OnSuccess: func(planID string) {
			exitMsg = fmt.Sprintf("Training plan ready: %s", planID)
			close(done)
		},
		OnClose: func() {
			if exitMsg == "" {
				exitMsg = "Wizard closed."
			}
			select {
			case <-done:
			default:
				close(done)
			}
		},
		OnProgress: func(msg string) {
			fmt.Printf("  ... %s\n", msg)
		},
	}

	pollCfg := usecase.PollConfig{Interval: cfg.Poll.Interval, MaxAttempts: cfg.Poll.MaxAttempts}
	wiz := usecase.NewWizard(gen, drafts, history, pollCfg, userID, cb, logger)
	if err := wiz.LoadDraft(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not load draft")
	}

	// Ctrl+C cancels any running generation and closes the wizard.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		wiz.Close()
	}()

	runWizard(ctx, wiz, done)
	if exitMsg != "" {
		fmt.Println(exitMsg)
	}
}

// runWizard walks the user through the steps on the terminal until the job
// reaches a terminal outcome or the user quits.
func runWizard(ctx context.Context, wiz *usecase.Wizard, done chan struct{}) {
	in := bufio.NewScanner(os.Stdin)

	for {
		switch wiz.Step() {
		case usecase.StepSelection:
			patch, quit := promptSelection(in, wiz.Request())
			if quit {
				wiz.Close()
				return
			}
			wiz.Advance(ctx, patch)

		case usecase.StepConstraints:
			patch, back, quit := promptConstraints(in, wiz.Request())
			if quit {
				wiz.Close()
				return
			}
			if back {
				wiz.Retreat()
				continue
			}
			wiz.Advance(ctx, patch)

		case usecase.StepEquipment:
			printErrors(wiz.Errors())
			patch, back, quit := promptEquipment(in, wiz.Request())
			if quit {
				wiz.Close()
				return
			}
			if back {
				wiz.Retreat()
				continue
			}
			step, errs := wiz.Advance(ctx, patch)
			if step == usecase.StepGenerating {
				fmt.Println("Generating your training plan...")
			} else {
				printErrors(errs)
			}

		case usecase.StepGenerating:
			select {
			case <-done:
				return
			case <-time.After(200 * time.Millisecond):
				// wizard may have fallen back to equipment on failure
			}
		}
	}
}

func printErrors(errs []string) {
	for _, e := range errs {
		fmt.Printf("  ! %s\n", e)
	}
}

func promptSelection(in *bufio.Scanner, cur *model.PlanRequest) (*model.RequestPatch, bool) {
	fmt.Printf("Race ID [%d] (q to quit): ", cur.RaceID)
	line, quit := readLine(in)
	if quit {
		return nil, true
	}
	patch := &model.RequestPatch{}
	if id, err := strconv.Atoi(line); err == nil && id > 0 {
		patch.RaceID = &id
	}
	return patch, false
}

func promptConstraints(in *bufio.Scanner, cur *model.PlanRequest) (*model.RequestPatch, bool, bool) {
	patch := &model.RequestPatch{}

	fmt.Printf("Training days per week [%d] (b=back, q=quit): ", cur.DaysPerWeek)
	line, quit := readLine(in)
	if quit {
		return nil, false, true
	}
	if line == "b" {
		return nil, true, false
	}
	if n, err := strconv.Atoi(line); err == nil {
		patch.DaysPerWeek = &n
	}

	fmt.Printf("Max hours per week [%.1f]: ", cur.MaxHoursPerWeek)
	line, quit = readLine(in)
	if quit {
		return nil, false, true
	}
	if h, err := strconv.ParseFloat(line, 64); err == nil {
		patch.MaxHoursPerWeek = &h
	}

	fmt.Printf("Experience (beginner/intermediate/experienced) [%s]: ", cur.Experience)
	line, quit = readLine(in)
	if quit {
		return nil, false, true
	}
	if line != "" {
		exp := model.ExperienceLevel(line)
		patch.Experience = &exp
	}

	return patch, false, false
}

func promptEquipment(in *bufio.Scanner, cur *model.PlanRequest) (*model.RequestPatch, bool, bool) {
	patch := &model.RequestPatch{}

	fmt.Printf("Equipment, comma separated [%s] (b=back, q=quit): ", joinEquipment(cur.AvailableEquipment))
	line, quit := readLine(in)
	if quit {
		return nil, false, true
	}
	if line == "b" {
		return nil, true, false
	}
	if line != "" {
		var eq []model.Equipment
		for _, part := range strings.Split(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				eq = append(eq, model.Equipment(p))
			}
		}
		patch.AvailableEquipment = &eq
	}

	fmt.Printf("Include strength training? (y/n) [%s]: ", yn(cur.IncludeStrengthTraining))
	line, quit = readLine(in)
	if quit {
		return nil, false, true
	}
	if line == "y" || line == "n" {
		v := line == "y"
		patch.IncludeStrengthTraining = &v
	}

	return patch, false, false
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", true
	}
	line := strings.TrimSpace(in.Text())
	if line == "q" {
		return "", true
	}
	return line, false
}

func joinEquipment(eq []model.Equipment) string {
	parts := make([]string, len(eq))
	for i, e := range eq {
		parts[i] = string(e)
	}
	return strings.Join(parts, ",")
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
