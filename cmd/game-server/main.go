package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"

	"poker-platform/internal/agent"
	"poker-platform/internal/arena"
	"poker-platform/internal/dashboard"
	"poker-platform/internal/game"
	"poker-platform/internal/settle"
	"poker-platform/internal/storage"
	"poker-platform/internal/storage/postgres"
	"poker-platform/internal/tablemgr"
)

// dashboardSink fans a completed hand out to the batch settler and the
// dashboard bus, satisfying arena.HandSink.
type dashboardSink struct {
	settler *settle.Settler
	bus     *dashboard.Bus
}

func (s *dashboardSink) PushHandResult(tableID string, result game.HandResult, actions []game.MultiActionRecord) {
	s.settler.PushHandResult(tableID, result, actions)

	for _, a := range actions {
		s.bus.PublishAction(storage.ActionLogEntry{
			RoomID:      tableID,
			PlayerID:    a.PlayerID,
			Action:      a.Action.String(),
			Amount:      a.Amount,
			Phase:       a.Phase.String(),
			TimestampMs: a.TimestampMs,
		})
	}

	var winnerID string
	var amount int64
	if len(result.Winners) > 0 {
		winnerID = result.Winners[0].PlayerID
		amount = result.Winners[0].Amount
	}
	s.bus.PublishHandComplete(dashboard.HandSummary{
		TableID:    tableID,
		HandNumber: result.HandNumber,
		WinnerID:   winnerID,
		Amount:     amount,
	})
}

func main() {
	manager := tablemgr.NewManager()
	registry := agent.NewRegistry()
	leaderboard := arena.NewInMemoryLeaderboard()
	bus := dashboard.NewBus()

	store, archive, publisher := buildSettlementBackends()
	settler := settle.NewSettler(settle.DefaultConfig(), store, archive, publisher, nil, func(roomID string, handNumbers []int64, err error) {
		log.Printf("settlement failed for room %s, hands %v: %v", roomID, handNumbers, err)
	})

	sink := &dashboardSink{settler: settler, bus: bus}
	a := arena.NewArena(manager, registry, leaderboard, nil, sink)

	stopStatsFeed := startStatsFeed(a, bus)
	defer stopStatsFeed()

	router := gin.Default()
	registerRoutes(router, manager, registry, a, bus)

	srv := &http.Server{
		Addr:    ":" + serverPort(),
		Handler: router,
	}

	go func() {
		log.Printf("game server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("game server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down game server...")
	a.Stop()
	manager.RemoveAllTables()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

// buildSettlementBackends wires C12's persistence adapters from plain
// env vars, the teacher's own config idiom (cmd/game-server/main.go's
// GAME_SERVER_PORT). Each backend is optional and independently
// configured; an unset backend leaves its slot nil, and the settler
// treats a nil store/archive/publisher as "skip this sink".
func buildSettlementBackends() (storage.SettlementStore, storage.ActionLogArchive, *settle.KafkaPublisher) {
	var store storage.SettlementStore
	var archive storage.ActionLogArchive
	var publisher *settle.KafkaPublisher

	if dsn := os.Getenv("SETTLEMENT_POSTGRES_DSN"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Printf("settlement postgres: %v", err)
		} else {
			pgStore := postgres.NewSettlementPostgresStorage(db)
			if err := pgStore.CreateSettlementTable(context.Background()); err != nil {
				log.Printf("settlement postgres: create table: %v", err)
			}
			store = pgStore
		}
	}

	if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		port, err := strconv.Atoi(os.Getenv("CLICKHOUSE_PORT"))
		if err != nil {
			port = 9000
		}
		chConfig := storage.ClickHouseConfig{
			Host:     host,
			Port:     port,
			Database: os.Getenv("CLICKHOUSE_DATABASE"),
			Username: os.Getenv("CLICKHOUSE_USERNAME"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
			Secure:   os.Getenv("CLICKHOUSE_SECURE") == "true",
		}
		chLog, err := storage.NewClickHouseActionLog(context.Background(), chConfig)
		if err != nil {
			log.Printf("settlement clickhouse: %v", err)
		} else {
			if err := chLog.CreateTables(context.Background()); err != nil {
				log.Printf("settlement clickhouse: create tables: %v", err)
			}
			archive = chLog
		}
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConfig := settle.KafkaPublisherConfig{
			Brokers:        strings.Split(brokers, ","),
			Topic:          envOrDefault("KAFKA_SETTLEMENT_TOPIC", "poker.settlements"),
			MaxRetries:     3,
			RetryBackoff:   100 * time.Millisecond,
			FlushFrequency: 500 * time.Millisecond,
			FlushMessages:  10,
			RequiredAcks:   sarama.WaitForAll,
			Compression:    sarama.CompressionSnappy,
		}
		kafkaPublisher, err := settle.NewKafkaPublisher(kafkaConfig)
		if err != nil {
			log.Printf("settlement kafka: %v", err)
		} else {
			publisher = kafkaPublisher
		}
	}

	return store, archive, publisher
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serverPort() string {
	if port := os.Getenv("GAME_SERVER_PORT"); port != "" {
		return port
	}
	return "3002"
}

func startStatsFeed(a *arena.Arena, bus *dashboard.Bus) func() {
	ticker := time.NewTicker(2 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				bus.PublishStats(a.GetLeaderboard(arena.SortByProfit))
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

func registerRoutes(router *gin.Engine, manager *tablemgr.Manager, registry *agent.Registry, a *arena.Arena, bus *dashboard.Bus) {
	router.GET("/ws/dashboard", dashboard.Handler(bus))

	router.POST("/api/tables", func(c *gin.Context) {
		var req struct {
			TableID         string `json:"tableId"`
			TableName       string `json:"tableName"`
			MaxPlayers      int    `json:"maxPlayers"`
			SmallBlind      int64  `json:"smallBlind"`
			BigBlind        int64  `json:"bigBlind"`
			StartingStack   int64  `json:"startingStack"`
			ActionTimeoutMs int64  `json:"actionTimeoutMs"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		config := game.TableConfig{
			TableID:         req.TableID,
			TableName:       req.TableName,
			MaxPlayers:      req.MaxPlayers,
			SmallBlind:      req.SmallBlind,
			BigBlind:        req.BigBlind,
			StartingStack:   req.StartingStack,
			ActionTimeoutMs: req.ActionTimeoutMs,
		}
		if config.MaxPlayers == 0 {
			config.MaxPlayers = 6
		}
		if config.ActionTimeoutMs == 0 {
			config.ActionTimeoutMs = game.DefaultActionTimeoutMs
		}

		table, err := manager.CreateTable(config)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"tableId": table.ID()})
	})

	router.GET("/api/tables/:tableId", func(c *gin.Context) {
		table, err := manager.GetTable(c.Param("tableId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, table.GetState())
	})

	router.POST("/api/agents", func(c *gin.Context) {
		var req struct {
			Name          string            `json:"name"`
			Mode          string            `json:"mode"`
			CallbackURL   string            `json:"callbackUrl"`
			WalletAddress string            `json:"walletAddress"`
			Metadata      map[string]string `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		mode, ok := parseAgentMode(req.Mode)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown agent mode %q", req.Mode)})
			return
		}

		id, err := registry.RegisterAgent(req.Name, mode, req.CallbackURL, req.WalletAddress, req.Metadata)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"agentId": id})
	})

	router.GET("/api/agents/:id", func(c *gin.Context) {
		snap, err := registry.GetAgent(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	router.GET("/api/agents/:id/pending", func(c *gin.Context) {
		pending, hasTurn := registry.ReadPending(c.Param("id"))
		if !hasTurn {
			c.JSON(http.StatusOK, gin.H{"hasTurn": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"hasTurn":         true,
			"playerView":      pending.View,
			"timeoutMs":       pending.TimeoutMs,
			"turnStartedAtMs": pending.StartedAt.UnixMilli(),
			"remainingMs":     pending.RemainingMs(time.Now()),
		})
	})

	router.POST("/api/agents/:id/pending", func(c *gin.Context) {
		var req struct {
			Action    string `json:"action"`
			Amount    int64  `json:"amount"`
			Reasoning string `json:"reasoning"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := registry.SubmitPending(c.Param("id"), req.Action, req.Amount, req.Reasoning); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": true})
	})

	router.POST("/api/arena/start", func(c *gin.Context) {
		var cfg arena.Config
		_ = c.ShouldBindJSON(&cfg)
		if err := a.Start(cfg); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"started": true})
	})

	router.POST("/api/arena/stop", func(c *gin.Context) {
		a.Stop()
		c.JSON(http.StatusOK, gin.H{"stopped": true})
	})

	router.GET("/api/arena/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.GetStatus())
	})

	router.GET("/api/arena/leaderboard", func(c *gin.Context) {
		sortBy := arena.SortBy(c.DefaultQuery("sortBy", string(arena.SortByProfit)))
		c.JSON(http.StatusOK, a.GetLeaderboard(sortBy))
	})
}

func parseAgentMode(s string) (agent.Mode, bool) {
	switch s {
	case "IN_PROCESS":
		return agent.ModeInProcess, true
	case "CALLBACK":
		return agent.ModeCallback, true
	case "POLLING":
		return agent.ModePolling, true
	default:
		return 0, false
	}
}
