package identity

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrfishcar/ares/internal/schema"
)

// SaveSnapshot persists the alias/sense registries to a SQLite database at
// path, so a caller can restore identity state between process
// invocations without the core itself becoming stateful mid-run (spec
// section 1: "in-memory and serializable"). Adapted from the teacher's
// graph.Open/AddEntity pattern (internal/graph/db.go, internal/graph/
// entities.go): same driver, same WAL DSN flags, same upsert idiom.
func (s *IdentityStore) SaveSnapshot(path string) error {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("identity snapshot: open: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("identity snapshot: ping: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS aliases (
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			eid INTEGER NOT NULL,
			confidence REAL NOT NULL,
			PRIMARY KEY (name, type)
		)`); err != nil {
		return fmt.Errorf("identity snapshot: migrate aliases: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS senses (
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			sp TEXT NOT NULL,
			eid INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("identity snapshot: migrate senses: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS counters (
			k TEXT PRIMARY KEY,
			v INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("identity snapshot: migrate counters: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("identity snapshot: begin: %w", err)
	}

	for key, e := range s.aliases {
		name, t := splitAliasKey(key)
		if _, err := tx.Exec(`
			INSERT INTO aliases (name, type, eid, confidence) VALUES (?, ?, ?, ?)
			ON CONFLICT(name, type) DO UPDATE SET eid = excluded.eid, confidence = excluded.confidence
		`, name, string(t), e.EID, e.Confidence); err != nil {
			tx.Rollback()
			return fmt.Errorf("identity snapshot: write alias: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM senses`); err != nil {
		tx.Rollback()
		return fmt.Errorf("identity snapshot: clear senses: %w", err)
	}
	for key, list := range s.senses {
		name, t := splitAliasKey(key)
		for _, se := range list {
			if _, err := tx.Exec(`INSERT INTO senses (name, type, sp, eid) VALUES (?, ?, ?, ?)`,
				name, string(t), encodeSP(se.SP), se.EID); err != nil {
				tx.Rollback()
				return fmt.Errorf("identity snapshot: write sense: %w", err)
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO counters (k, v) VALUES ('next_eid', ?), ('next_aid', ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v
	`, s.nextEID, s.nextAID); err != nil {
		tx.Rollback()
		return fmt.Errorf("identity snapshot: write counters: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot restores an IdentityStore previously written by
// SaveSnapshot. A missing database file is not an error; it yields a
// fresh, empty store.
func LoadSnapshot(path string) (*IdentityStore, error) {
	store := New()

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("identity snapshot: open: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return store, nil
	}

	rows, err := db.Query(`SELECT name, type, eid, confidence FROM aliases`)
	if err != nil {
		return store, nil // table doesn't exist yet: fresh store
	}
	defer rows.Close()
	for rows.Next() {
		var name, t string
		var eid int64
		var conf float64
		if err := rows.Scan(&name, &t, &eid, &conf); err != nil {
			continue
		}
		store.aliases[aliasKey(schema.EntityType(t), name)] = aliasEntry{EID: eid, Confidence: conf}
		if eid >= store.nextEID {
			store.nextEID = eid + 1
		}
	}

	senseRows, err := db.Query(`SELECT name, type, sp, eid FROM senses`)
	if err == nil {
		defer senseRows.Close()
		for senseRows.Next() {
			var name, t, sp string
			var eid int64
			if err := senseRows.Scan(&name, &t, &sp, &eid); err != nil {
				continue
			}
			key := aliasKey(schema.EntityType(t), name)
			store.senses[key] = append(store.senses[key], senseEntry{SP: decodeSP(sp), EID: eid})
		}
	}

	counterRows, err := db.Query(`SELECT k, v FROM counters`)
	if err == nil {
		defer counterRows.Close()
		for counterRows.Next() {
			var k string
			var v int64
			if err := counterRows.Scan(&k, &v); err != nil {
				continue
			}
			switch k {
			case "next_eid":
				if v > store.nextEID {
					store.nextEID = v
				}
			case "next_aid":
				if v > store.nextAID {
					store.nextAID = v
				}
			}
		}
	}

	return store, nil
}

func splitAliasKey(key string) (string, schema.EntityType) {
	for i := 0; i < len(key)-1; i++ {
		if key[i] == ':' && key[i+1] == ':' {
			return key[i+2:], schema.EntityType(key[:i])
		}
	}
	return key, ""
}

func encodeSP(sp []int) string {
	s := ""
	for i, v := range sp {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", v)
	}
	return s
}

func decodeSP(s string) []int {
	if s == "" {
		return nil
	}
	var sp []int
	var cur int
	started := false
	for _, r := range s {
		if r == ',' {
			sp = append(sp, cur)
			cur = 0
			started = false
			continue
		}
		cur = cur*10 + int(r-'0')
		started = true
	}
	if started {
		sp = append(sp, cur)
	}
	return sp
}
