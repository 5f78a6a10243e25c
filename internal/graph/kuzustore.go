//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store on top of KuzuDB. It requires CGO because the
// go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore persisted under dbPath. KuzuDB
// creates the leaf directory itself; its parent is created here.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", path, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// relTables maps each relationship kind to its REL table.
var relTables = map[RelationKind]string{
	RelationInheritance: "INHERITS",
	RelationComposition: "COMPOSES",
	RelationAggregation: "AGGREGATES",
	RelationDependency:  "DEPENDS_ON",
}

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Class(
		name STRING,
		kind STRING,
		file STRING,
		line INT64,
		external BOOLEAN,
		field_count INT64,
		method_count INT64,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS INHERITS(FROM Class TO Class, label STRING)`,
	`CREATE REL TABLE IF NOT EXISTS COMPOSES(FROM Class TO Class, label STRING)`,
	`CREATE REL TABLE IF NOT EXISTS AGGREGATES(FROM Class TO Class, label STRING)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Class TO Class, label STRING)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddClass upserts a Class node.
func (s *KuzuStore) AddClass(_ context.Context, node ClassNode) error {
	return s.exec(
		`MERGE (c:Class {name: $name})
		 SET c.kind = $kind, c.file = $file, c.line = $line,
		     c.external = $external, c.field_count = $fields, c.method_count = $methods`,
		map[string]any{
			"name":     node.Name,
			"kind":     string(node.Kind),
			"file":     node.File,
			"line":     int64(node.Line),
			"external": node.External,
			"fields":   int64(node.FieldCount),
			"methods":  int64(node.MethodCount),
		},
	)
}

// AddEdge inserts a relationship between two existing Class nodes.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	table, ok := relTables[edge.Kind]
	if !ok {
		return fmt.Errorf("kuzu: unsupported relation kind: %s", edge.Kind)
	}
	cypher := fmt.Sprintf(
		`MATCH (a:Class {name: $src}), (b:Class {name: $dst})
		 CREATE (a)-[:%s {label: $label}]->(b)`, table)
	return s.exec(cypher, map[string]any{
		"src":   edge.From,
		"dst":   edge.To,
		"label": edge.Label,
	})
}

// ---------- Read operations ----------

const classColumns = "c.name, c.kind, c.file, c.line, c.external, c.field_count, c.method_count"

// GetClass retrieves a Class node by name, or nil if not found.
func (s *KuzuStore) GetClass(_ context.Context, name string) (*ClassNode, error) {
	rows, err := s.query(
		"MATCH (c:Class {name: $name}) RETURN "+classColumns,
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToClass(rows[0]), nil
}

// QueryClasses returns classes whose name contains query, ordered by name.
// A limit <= 0 returns all matches.
func (s *KuzuStore) QueryClasses(_ context.Context, query string, limit int) ([]ClassNode, error) {
	cypher := "MATCH (c:Class) WHERE c.name CONTAINS $q RETURN " + classColumns + " ORDER BY c.name"
	params := map[string]any{"q": query}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]ClassNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToClass(r))
	}
	return out, nil
}

// GetRelated returns the edges leaving or entering the named class.
func (s *KuzuStore) GetRelated(_ context.Context, name string, direction Direction) ([]Edge, error) {
	var pattern string
	switch direction {
	case DirectionOutgoing:
		pattern = "MATCH (a:Class {name: $name})-[r:%s]->(b:Class) RETURN a.name, b.name, r.label"
	case DirectionIncoming:
		pattern = "MATCH (a:Class)-[r:%s]->(b:Class {name: $name}) RETURN a.name, b.name, r.label"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", direction)
	}
	var out []Edge
	for _, kind := range AllRelationKinds {
		rows, err := s.query(fmt.Sprintf(pattern, relTables[kind]), map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		out = append(out, rowsToEdges(rows, kind)...)
	}
	return out, nil
}

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	var edges []Edge
	for _, kind := range AllRelationKinds {
		cypher := fmt.Sprintf("MATCH (a:Class)-[r:%s]->(b:Class) RETURN a.name, b.name, r.label", relTables[kind])
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; skip.
			continue
		}
		edges = append(edges, rowsToEdges(rows, kind)...)
	}
	return edges, nil
}

// ---------- Stats ----------

// Stats returns class, external and edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	rows, err := s.query("MATCH (c:Class) RETURN c.external, count(c)", nil)
	if err != nil {
		return nil, err
	}
	stats := &GraphStats{}
	for _, r := range rows {
		if toBool(r[0]) {
			stats.ExternalCount += toInt(r[1])
		} else {
			stats.ClassCount += toInt(r[1])
		}
	}
	for _, kind := range AllRelationKinds {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", relTables[kind])
		rows, err := s.query(cypher, nil)
		if err != nil {
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			stats.EdgeCount += toInt(rows[0][0])
		}
	}
	return stats, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// rowToClass converts a classColumns row into a ClassNode.
func rowToClass(r []any) *ClassNode {
	return &ClassNode{
		Name:        toString(r[0]),
		Kind:        EntityKind(toString(r[1])),
		File:        toString(r[2]),
		Line:        toInt(r[3]),
		External:    toBool(r[4]),
		FieldCount:  toInt(r[5]),
		MethodCount: toInt(r[6]),
	}
}

func rowsToEdges(rows [][]any, kind RelationKind) []Edge {
	out := make([]Edge, 0, len(rows))
	for _, r := range rows {
		out = append(out, Edge{
			From:  toString(r[0]),
			To:    toString(r[1]),
			Kind:  kind,
			Label: toString(r[2]),
		})
	}
	return out
}

// KuzuDB returns typed Go values; these coerce any to a concrete type.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
