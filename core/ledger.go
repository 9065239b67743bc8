package core

import (
	"fmt"
	"log/slog"

	"certledger/config"
	"certledger/core/events"
	"certledger/core/state"
	"certledger/native/cert"
	"certledger/observability/logging"
	"certledger/storage"
)

// Ledger wires the certificate engine to its storage backend and event
// buffer. It performs no host duties: invocation atomicity, rollback and
// serial ordering remain the caller's responsibility.
type Ledger struct {
	db     storage.Database
	engine *cert.Engine
	events *events.Buffer
	log    *slog.Logger
}

// OpenLedger opens the database named by the configuration, builds the state
// manager under the configured namespace and constructs the engine.
func OpenLedger(cfg *config.Config) (*Ledger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("core: nil config")
	}
	superAdmin, err := cfg.SuperAdminAddress()
	if err != nil {
		return nil, err
	}

	var db storage.Database
	if cfg.InMemory {
		db = storage.NewMemDB()
	} else {
		db, err = storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			return nil, err
		}
	}

	manager := state.NewManager(db, []byte(cfg.Namespace))
	engine := cert.NewEngine(manager, cert.Params{SuperAdmin: superAdmin})
	buffer := events.NewBuffer()
	engine.SetEmitter(buffer)

	log := logging.New("certledger")
	log.Info("ledger opened", "namespace", cfg.Namespace, "inMemory", cfg.InMemory)

	return &Ledger{db: db, engine: engine, events: buffer, log: log}, nil
}

// Engine exposes the certificate engine.
func (l *Ledger) Engine() *cert.Engine {
	return l.engine
}

// Events exposes the buffering emitter; hosts drain it after each applied
// invocation.
func (l *Ledger) Events() *events.Buffer {
	return l.events
}

// SetTransferLedger installs the external asset ledger used to verify
// payments.
func (l *Ledger) SetTransferLedger(ledger cert.TransferLedger) {
	l.engine.SetTransferLedger(ledger)
}

// Close shuts down the underlying database.
func (l *Ledger) Close() {
	if l == nil || l.db == nil {
		return
	}
	l.log.Info("ledger closed")
	l.db.Close()
}
