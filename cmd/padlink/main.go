// padlink bridges an ESP32 pad controller on a serial port to the
// network: it parses the device's line protocol into button and
// orientation state, fans events out to WebSocket subscribers, and
// exposes a REST API for device control, event history, the song
// library, and upstream service relays.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/padworks/padlink/internal/api"
	"github.com/padworks/padlink/internal/bridge"
	"github.com/padworks/padlink/internal/broadcast"
	"github.com/padworks/padlink/internal/device"
	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/database"
	"github.com/padworks/padlink/internal/infrastructure/influxdb"
	"github.com/padworks/padlink/internal/infrastructure/logging"
	"github.com/padworks/padlink/internal/infrastructure/mqtt"
	"github.com/padworks/padlink/internal/parser"
	"github.com/padworks/padlink/internal/songs"
	"github.com/padworks/padlink/internal/tiles"
	"github.com/padworks/padlink/internal/upstream"

	// Blank import registers the embedded SQL migrations.
	_ "github.com/padworks/padlink/migrations"
)

// Version information - set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

var configFlag = flag.String("config", "", "path to the config file (overrides PADLINK_CONFIG)")

// telemetryInterval is the cadence of pipeline stat samples written to
// InfluxDB.
const telemetryInterval = 10 * time.Second

// healthCheckTimeout bounds the post-startup component verification.
const healthCheckTimeout = 5 * time.Second

func main() {
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components together and blocks until the context is
// cancelled. Teardown happens in reverse wiring order through the defer
// chain: API first so no new requests arrive, then the serial reader,
// then the fan-out hub, then the external connections.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting padlink", "version", version, "commit", commit, "build_date", date)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT broker: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT broker")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT connection", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT broker connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT broker connection lost", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB connection", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	store := device.NewStateStore()
	history := device.NewHistory(cfg.History.Capacity)

	hub := broadcast.New(cfg.Broadcast, store.Buttons, log)
	hub.Start(ctx)
	defer hub.Close()

	var archive device.Archive
	if cfg.Archive.Enabled {
		sqlArchive := device.NewSQLiteArchive(db.DB)
		archive = sqlArchive

		retention := time.Duration(cfg.Archive.RetentionDays) * 24 * time.Hour
		pruner := device.NewPruner(sqlArchive, retention, log)
		pruner.Start(ctx)
		defer pruner.Stop()
		log.Info("event archive enabled", "retention_days", cfg.Archive.RetentionDays)
	}

	// The relay is assigned after the manager exists; every connect path
	// that can fire the status hook starts later, so the hook never
	// observes a partially built relay.
	var relay *mqtt.Relay

	mgr, err := bridge.New(bridge.Deps{
		Config: cfg.Serial,
		Logger: log,
		Parser: parser.New(parser.Config{
			PulseEnabled: cfg.Serial.Pulse.Enabled,
			PulseButton:  cfg.Serial.Pulse.Button,
		}),
		Store:   store,
		History: history,
		Hub:     hub,
		Archive: archive,
		OnStatus: func(st bridge.Status) {
			if relay == nil {
				return
			}
			if err := relay.PublishBridgeState(st.Connected); err != nil {
				log.Warn("bridge state publish failed", "error", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("creating serial bridge: %w", err)
	}
	defer func() {
		if discErr := mgr.Disconnect(); discErr != nil {
			log.Error("error disconnecting serial port", "error", discErr)
		}
	}()

	if mqttClient != nil {
		relay, err = mqtt.NewRelay(mqttClient, &bridgeConnector{mgr: mgr})
		if err != nil {
			return fmt.Errorf("creating MQTT relay: %w", err)
		}
		if err := relay.Start(); err != nil {
			return fmt.Errorf("starting MQTT relay: %w", err)
		}
		if err := relay.PublishBridgeState(mgr.Status().Connected); err != nil {
			log.Warn("initial bridge state publish failed", "error", err)
		}
		if err := startEventPump(ctx, hub, relay, log); err != nil {
			return fmt.Errorf("starting MQTT event pump: %w", err)
		}
		log.Info("MQTT relay started", "topic_prefix", cfg.MQTT.TopicPrefix)
	}

	if influxClient != nil {
		startTelemetryPump(ctx, influxClient, mgr, hub, store)
		log.Info("telemetry pump started", "interval", telemetryInterval.String())
	}

	songStore, err := songs.NewStore(cfg.Songs.Directory)
	if err != nil {
		return fmt.Errorf("opening song store: %w", err)
	}
	library := songs.NewLibrary(songs.NewSQLiteRepository(db.DB), songStore, cfg.Songs.MaxCount, log)
	adopted, err := library.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconciling song library: %w", err)
	}
	if adopted > 0 {
		log.Info("adopted untracked songs from disk", "count", adopted)
	}

	srv, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Bridge:   mgr,
		Store:    store,
		History:  history,
		Hub:      hub,
		Archive:  archive,
		Songs:    library,
		Tiles:    tiles.New(),
		Upstream: upstream.NewClient(cfg.Upstream, log),
		DB:       db,
		Version:  version,
		Commit:   commit,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	if err := healthCheck(ctx, db, mqttClient, influxClient, srv); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if cfg.Serial.AutoConnect {
		// Non-fatal: the device may be unplugged at boot and connected
		// later through the API or an MQTT command.
		if st, connErr := mgr.Connect("", 0); connErr != nil {
			log.Warn("serial auto-connect failed", "error", connErr)
		} else {
			log.Info("serial device connected", "port", st.Port, "baud", st.Baud)
		}
	}

	if cfg.Watch.Enabled {
		serial := cfg.Serial
		watcher, watchErr := config.NewWatcher(configPath,
			func(next *config.Config) {
				log.Info("configuration reloaded", "path", configPath)
				if next.Serial == serial {
					return
				}
				serial = next.Serial
				mgr.UpdateDefaults(next.Serial)
				if !next.Serial.AutoConnect {
					return
				}
				log.Info("serial settings changed, reconnecting",
					"port", next.Serial.DefaultPort, "baud", next.Serial.DefaultBaud)
				if discErr := mgr.Disconnect(); discErr != nil {
					log.Error("reconnect aborted, disconnect failed", "error", discErr)
					return
				}
				if _, connErr := mgr.Connect(next.Serial.DefaultPort, next.Serial.DefaultBaud); connErr != nil {
					log.Warn("reconnect failed", "error", connErr)
				}
			},
			func(err error) {
				log.Warn("configuration reload failed", "error", err)
			},
		)
		if watchErr != nil {
			return fmt.Errorf("starting config watcher: %w", watchErr)
		}
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				log.Error("error closing config watcher", "error", closeErr)
			}
		}()
		log.Info("configuration watcher started", "path", configPath)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping components")

	return nil
}

// eventPublisher is the subset of the MQTT relay the event pump drives.
type eventPublisher interface {
	PublishEvent(eventType string, button int) error
}

// startEventPump forwards pad events from the broadcast hub to the MQTT
// relay until the context is cancelled or the hub shuts down. Snapshot
// messages stay local; subscribers joining the hub should not ripple
// out to the broker. When a stalled broker backs publishes up until the
// hub prunes the pump as a slow subscriber, the pump re-subscribes and
// resumes; events shed while detached are lost.
func startEventPump(ctx context.Context, hub *broadcast.Hub, relay eventPublisher, log *logging.Logger) error {
	sub, err := hub.Subscribe()
	if err != nil {
		return err
	}

	go func() {
		defer func() { hub.Unsubscribe(sub) }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.C:
				if !ok {
					if ctx.Err() != nil {
						return
					}
					log.Warn("event pump fell behind, resubscribing")
					next, subErr := hub.Subscribe()
					if subErr != nil {
						log.Warn("event pump resubscribe failed, broker forwarding stopped", "error", subErr)
						return
					}
					sub = next
					continue
				}
				if msg.Event.Type == device.EventSnapshot {
					continue
				}
				if err := relay.PublishEvent(string(msg.Event.Type), msg.Event.Button); err != nil {
					log.Warn("event publish failed", "type", msg.Event.Type, "error", err)
				}
			}
		}
	}()

	return nil
}

// startTelemetryPump samples pipeline statistics on a fixed cadence and
// writes them to InfluxDB. Orientation is written only when the reading
// changes so an idle device does not produce a flatline series.
func startTelemetryPump(ctx context.Context, influx *influxdb.Client, mgr *bridge.Manager, hub *broadcast.Hub, store *device.StateStore) {
	go func() {
		ticker := time.NewTicker(telemetryInterval)
		defer ticker.Stop()

		var lastPitch, lastRoll float64
		var seeded bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				counters := mgr.Counters()
				influx.WriteBridgeStats(influxdb.BridgeStats{
					Connected:     mgr.Status().Connected,
					LinesParsed:   counters.Lines,
					EventsEmitted: counters.Events,
					DroppedEvents: hub.Dropped(),
					QueueDepth:    hub.QueueDepth(),
					Subscribers:   hub.Subscribers(),
				})

				orient := store.Orientation()
				if orient.Pitch == nil || orient.Roll == nil {
					continue
				}
				if seeded && *orient.Pitch == lastPitch && *orient.Roll == lastRoll {
					continue
				}
				lastPitch, lastRoll = *orient.Pitch, *orient.Roll
				seeded = true
				influx.WriteOrientation(lastPitch, lastRoll)
			}
		}
	}()
}

// healthCheck verifies every started component is responsive. Optional
// clients that were not enabled pass as nil and are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, srv *api.Server) error {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	if err := srv.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// getConfigPath returns the config file location. The -config flag wins
// over the PADLINK_CONFIG environment variable.
func getConfigPath() string {
	if *configFlag != "" {
		return *configFlag
	}
	if path := os.Getenv("PADLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// bridgeConnector adapts the serial bridge manager to the MQTT relay's
// Connector interface, which has no use for the returned status.
type bridgeConnector struct {
	mgr *bridge.Manager
}

func (c *bridgeConnector) Connect(port string, baud int) error {
	_, err := c.mgr.Connect(port, baud)
	return err
}

func (c *bridgeConnector) Disconnect() error {
	return c.mgr.Disconnect()
}
