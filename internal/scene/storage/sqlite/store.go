// Package sqlite persists scene snapshots to a single SQLite file so a scene
// can survive server restarts and be shared between sessions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	_ "modernc.org/sqlite"

	"github.com/coplay/scene-mcp/internal/scene"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entities (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    pos_x REAL NOT NULL, pos_y REAL NOT NULL, pos_z REAL NOT NULL,
    rot_w REAL NOT NULL, rot_x REAL NOT NULL, rot_y REAL NOT NULL, rot_z REAL NOT NULL,
    scale_x REAL NOT NULL, scale_y REAL NOT NULL, scale_z REAL NOT NULL
);
`

// Store implements scene snapshot persistence over SQLite.
//
// One file holds exactly one scene: saving replaces the previous snapshot in
// a single transaction so a loaded scene is always internally consistent.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a scene snapshot store and ensures its schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the persisted snapshot with the given entities atomically.
func (s *Store) Save(ctx context.Context, entities []scene.Entity) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("snapshot store is not open")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	const insertSQL = `
INSERT INTO entities (id, name, parent_id,
    pos_x, pos_y, pos_z,
    rot_w, rot_x, rot_y, rot_z,
    scale_x, scale_y, scale_z)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, ent := range entities {
		_, err := tx.ExecContext(ctx, insertSQL,
			ent.ID, ent.Name, ent.ParentID,
			ent.Position.X(), ent.Position.Y(), ent.Position.Z(),
			ent.Rotation.W, ent.Rotation.V.X(), ent.Rotation.V.Y(), ent.Rotation.V.Z(),
			ent.Scale.X(), ent.Scale.Y(), ent.Scale.Z(),
		)
		if err != nil {
			return fmt.Errorf("insert entity %d: %w", ent.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot in id order.
func (s *Store) Load(ctx context.Context) ([]scene.Entity, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("snapshot store is not open")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, parent_id,
    pos_x, pos_y, pos_z,
    rot_w, rot_x, rot_y, rot_z,
    scale_x, scale_y, scale_z
FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var entities []scene.Entity
	for rows.Next() {
		var ent scene.Entity
		var px, py, pz, rw, rx, ry, rz, sx, sy, sz float64
		if err := rows.Scan(&ent.ID, &ent.Name, &ent.ParentID,
			&px, &py, &pz, &rw, &rx, &ry, &rz, &sx, &sy, &sz); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		ent.Position = mgl64.Vec3{px, py, pz}
		ent.Rotation = mgl64.Quat{W: rw, V: mgl64.Vec3{rx, ry, rz}}
		ent.Scale = mgl64.Vec3{sx, sy, sz}
		entities = append(entities, ent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return entities, nil
}
