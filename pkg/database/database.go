// Package database provides the MongoDB connection used to persist command
// registration state. Writes issued while offline are queued and flushed on
// the next successful connection.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const dbPrefix = "DB"

// queuedWrite is an upsert that could not reach the server
type queuedWrite struct {
	Collection string
	Filter     bson.M
	Set        bson.M
}

// Database manages the MongoDB connection
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	connected   bool
	collections map[string]*mongo.Collection
	mu          sync.RWMutex

	queueMu    sync.Mutex
	writeQueue []queuedWrite
}

// NewDatabase creates a disconnected Database
func NewDatabase() *Database {
	return &Database{collections: make(map[string]*mongo.Collection)}
}

// Connect establishes a connection to MongoDB and flushes queued writes
func (d *Database) Connect(ctx context.Context, mongoURL, dbName string) error {
	d.mu.Lock()
	if d.connected {
		d.mu.Unlock()
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", dbPrefix)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		d.mu.Unlock()
		logger.Critical("Fallo al conectar con la base de datos.", dbPrefix)
		return err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		d.mu.Unlock()
		_ = client.Disconnect(context.Background())
		logger.Critical("Fallo al verificar conexión con la base de datos.", dbPrefix)
		return err
	}

	d.client = client
	d.db = client.Database(dbName)
	d.connected = true
	d.collections = make(map[string]*mongo.Collection)
	d.mu.Unlock()

	logger.Success("Conectado exitosamente a la base de datos.", dbPrefix)

	go d.flushQueue(context.Background())
	return nil
}

// Disconnect closes the database connection
func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.connected = false
	d.client = nil
	d.db = nil
	logger.Warn("La base de datos ha sido desconectada", dbPrefix)
	return nil
}

// IsConnected reports whether the last Connect succeeded
func (d *Database) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Ping measures the database response time
func (d *Database) Ping(ctx context.Context) (time.Duration, error) {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()

	if client == nil {
		return 0, fmt.Errorf("not connected to database")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// Status returns a human readable connection status
func (d *Database) Status(ctx context.Context) (string, bool) {
	if _, err := d.Ping(ctx); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// Collection returns a MongoDB collection, or nil while disconnected
func (d *Database) Collection(name string) *mongo.Collection {
	d.mu.RLock()
	if col, ok := d.collections[name]; ok {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

// upsert writes set into the document matching filter, queueing the write
// when the server is unreachable
func (d *Database) upsert(ctx context.Context, collection string, filter, set bson.M) error {
	col := d.Collection(collection)
	if col == nil {
		d.enqueue(queuedWrite{Collection: collection, Filter: filter, Set: set})
		return nil
	}

	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, bson.M{"$set": set}, opts); err != nil {
		d.enqueue(queuedWrite{Collection: collection, Filter: filter, Set: set})
		return fmt.Errorf("upsert in %s: %w", collection, err)
	}
	return nil
}

func (d *Database) enqueue(w queuedWrite) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	d.writeQueue = append(d.writeQueue, w)
}

// Pending returns the number of queued writes
func (d *Database) Pending() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.writeQueue)
}

// flushQueue replays queued writes; failures are queued again
func (d *Database) flushQueue(ctx context.Context) {
	d.queueMu.Lock()
	if len(d.writeQueue) == 0 {
		d.queueMu.Unlock()
		return
	}
	writes := d.writeQueue
	d.writeQueue = nil
	d.queueMu.Unlock()

	logger.System(fmt.Sprintf("Sincronizando %d operaciones pendientes con la DB...", len(writes)), "DB-Sync")

	failed := 0
	for _, w := range writes {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := d.upsert(wctx, w.Collection, w.Filter, w.Set)
		cancel()
		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		logger.Warn(fmt.Sprintf("%d operaciones no pudieron sincronizarse y se reintentarán.", failed), "DB-Sync")
		return
	}
	logger.Success("Sincronización completada exitosamente.", "DB-Sync")
}
