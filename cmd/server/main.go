package main

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	googlecal "dayplan/internal/adapter/calendar/google"
	mockcal "dayplan/internal/adapter/calendar/mock"
	httpadapter "dayplan/internal/adapter/http"
	metricsinmem "dayplan/internal/adapter/metrics/inmemory"
	gormrepo "dayplan/internal/adapter/repo/gorm"
	memrepo "dayplan/internal/adapter/repo/memory"
	sealedvault "dayplan/internal/adapter/vault/sealed"
	"dayplan/internal/app/agent"
	"dayplan/internal/app/approval"
	"dayplan/internal/app/auth"
	"dayplan/internal/app/chat"
	"dayplan/internal/app/expiry"
	"dayplan/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/server"
)

type deps struct {
	Actions       ports.ActionRepository
	Conversations ports.ConversationRepository
	Users         ports.UserRepository
	Profiles      ports.ProfileRepository
	Vault         ports.CredentialVault
	Calendar      ports.CalendarGateway
	TxManager     ports.TxManager
}

func main() {
	d := mustBuildDeps()
	kpiRecorder := metricsinmem.NewRecorder()

	tokens := auth.TokenIssuer{
		Secret: mustAuthSecret(),
		TTL:    time.Duration(intEnv("DAYPLAN_TOKEN_TTL_HOURS", 24)) * time.Hour,
	}
	approvals := approval.UseCase{
		Actions:  d.Actions,
		Vault:    d.Vault,
		Calendar: d.Calendar,
		Metrics:  kpiRecorder,
		TTL:      time.Duration(intEnv("DAYPLAN_ACTION_TTL_MINUTES", 30)) * time.Minute,
	}
	router := agent.Router{
		Handlers: agent.DefaultHandlers(approvals, d.Calendar, d.Conversations, d.Profiles, time.Now),
		Metrics:  kpiRecorder,
	}

	h := httpadapter.Handler{
		RegisterUC: auth.RegisterUseCase{
			Users:     d.Users,
			Profiles:  d.Profiles,
			TxManager: d.TxManager,
			Tokens:    tokens,
		},
		Tokens: tokens,
		ChatUC: chat.UseCase{
			Router:        router,
			Conversations: d.Conversations,
			Approvals:     approvals,
		},
		Approvals: approvals,
		Vault:     d.Vault,
		Calendar:  d.Calendar,
		KPI:       kpiRecorder,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := expiry.Sweeper{
		Engine:   approvals,
		Interval: time.Duration(intEnv("DAYPLAN_SWEEP_SECONDS", 60)) * time.Second,
	}
	go sweeper.Run(ctx)

	addr := envOr("DAYPLAN_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("dayplan server listening on %s", addr)
	s.Spin()
}

func mustBuildDeps() deps {
	dsn := strings.TrimSpace(os.Getenv("DAYPLAN_DB_DSN"))
	if dsn == "" {
		log.Println("DAYPLAN_DB_DSN not set, using in-memory stores and the mock calendar")
		store := memrepo.NewStore()
		return deps{
			Actions:       memrepo.NewPendingActionRepo(store),
			Conversations: memrepo.NewConversationRepo(store),
			Users:         memrepo.NewUserRepo(store),
			Profiles:      memrepo.NewProfileRepo(store),
			Vault:         memrepo.NewVault(store),
			Calendar:      mockcal.NewGateway(),
			TxManager:     memrepo.NewTxManager(),
		}
	}

	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	migrationsDir := envOr("DAYPLAN_MIGRATIONS_DIR", "./migrations")
	if err := gormrepo.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	vault, err := sealedvault.New(db, mustVaultKey())
	if err != nil {
		log.Fatalf("open credential vault: %v", err)
	}

	d := deps{
		Actions:       gormrepo.NewPendingActionRepo(db),
		Conversations: gormrepo.NewConversationRepo(db),
		Users:         gormrepo.NewUserRepo(db),
		Profiles:      gormrepo.NewProfileRepo(db),
		Vault:         vault,
		TxManager:     gormrepo.NewTxManager(db),
	}
	d.Calendar = buildGatewayFromEnv(vault)
	return d
}

func buildGatewayFromEnv(vault ports.CredentialVault) ports.CalendarGateway {
	switch provider := envOr("DAYPLAN_CALENDAR_PROVIDER", "mock"); provider {
	case "google":
		return googlecal.Gateway{Vault: vault}
	case "mock":
		return mockcal.NewGateway()
	default:
		log.Fatalf("unknown DAYPLAN_CALENDAR_PROVIDER %q (want google or mock)", provider)
		return nil
	}
}

func mustAuthSecret() []byte {
	secret := strings.TrimSpace(os.Getenv("DAYPLAN_AUTH_SECRET"))
	if secret == "" {
		log.Fatal("DAYPLAN_AUTH_SECRET is required")
	}
	return []byte(secret)
}

// mustVaultKey decodes DAYPLAN_VAULT_KEY, a hex-encoded 32-byte key.
func mustVaultKey() []byte {
	raw := strings.TrimSpace(os.Getenv("DAYPLAN_VAULT_KEY"))
	if raw == "" {
		log.Fatal("DAYPLAN_VAULT_KEY is required when DAYPLAN_DB_DSN is set")
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		log.Fatalf("decode DAYPLAN_VAULT_KEY: %v", err)
	}
	return key
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
