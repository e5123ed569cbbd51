package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"flowmap/internal/errors"
	"flowmap/internal/flow"
)

// ReplaceFlow persists a flow record wholesale: the previous record for the
// same name, if any, is superseded in the same transaction. Annotation order
// is preserved via the position column.
func (db *DB) ReplaceFlow(record flow.FlowRecord) error {
	err := db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM flows WHERE name = ?", record.Name); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO flows (name, declared_cross, is_cross, exported_at)
			VALUES (?, ?, ?, ?)
		`, record.Name, boolInt(record.DeclaredCross), boolInt(record.IsCross),
			time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}

		for i, ann := range record.Annotations {
			if err := insertAnnotation(tx, record.Name, i, ann); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.New(errors.DBError, fmt.Sprintf("failed to store flow %q", record.Name), err)
	}
	return nil
}

// LoadFlow reads one flow record. Returns a FlowNotFound error when the flow
// has never been exported.
func (db *DB) LoadFlow(name string) (flow.FlowRecord, error) {
	records, err := db.loadFlows("WHERE name = ?", name)
	if err != nil {
		return flow.FlowRecord{}, err
	}
	if len(records) == 0 {
		return flow.FlowRecord{}, errors.New(errors.FlowNotFound,
			fmt.Sprintf("flow %q has no stored record", name), nil)
	}
	return records[0], nil
}

// LoadFlows reads every stored flow record, sorted by name.
func (db *DB) LoadFlows() ([]flow.FlowRecord, error) {
	return db.loadFlows("")
}

// DeleteFlow removes a flow record and its annotations.
func (db *DB) DeleteFlow(name string) error {
	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM flows WHERE name = ?", name)
		return err
	})
	if err != nil {
		return errors.New(errors.DBError, fmt.Sprintf("failed to delete flow %q", name), err)
	}
	return nil
}

func (db *DB) loadFlows(where string, args ...interface{}) ([]flow.FlowRecord, error) {
	rows, err := db.Query("SELECT name, declared_cross, is_cross FROM flows "+where, args...)
	if err != nil {
		return nil, errors.New(errors.DBError, "failed to read flows", err)
	}
	defer rows.Close()

	var records []flow.FlowRecord
	for rows.Next() {
		var r flow.FlowRecord
		var declared, cross int
		if err := rows.Scan(&r.Name, &declared, &cross); err != nil {
			return nil, errors.New(errors.DBError, "failed to scan flow row", err)
		}
		r.DeclaredCross = declared != 0
		r.IsCross = cross != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.DBError, "failed to read flows", err)
	}

	for i := range records {
		anns, err := db.loadAnnotations(records[i].Name)
		if err != nil {
			return nil, err
		}
		records[i].Annotations = anns
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (db *DB) loadAnnotations(flowName string) ([]flow.Annotation, error) {
	rows, err := db.Query(`
		SELECT id, repo_id, path, commit_hash, line, col, tagless_line,
		       context_before, context_line, context_after,
		       symbol_path, node_type, current_node, next_node,
		       cross_declared, raw_comment
		FROM annotations
		WHERE flow_name = ?
		ORDER BY position
	`, flowName)
	if err != nil {
		return nil, errors.New(errors.DBError, "failed to read annotations", err)
	}
	defer rows.Close()

	var anns []flow.Annotation
	for rows.Next() {
		var ann flow.Annotation
		var before, after string
		var cross int
		err := rows.Scan(&ann.ID, &ann.RepoID, &ann.Path, &ann.Commit,
			&ann.Line, &ann.Column, &ann.TaglessLine,
			&before, &ann.Context.Line, &after,
			&ann.SymbolPath, &ann.NodeType,
			&ann.Edge.CurrentNode, &ann.Edge.NextNode,
			&cross, &ann.RawComment)
		if err != nil {
			return nil, errors.New(errors.DBError, "failed to scan annotation row", err)
		}
		ann.Edge.FlowName = flowName
		ann.CrossDeclared = cross != 0
		if err := json.Unmarshal([]byte(before), &ann.Context.Before); err != nil {
			return nil, errors.New(errors.DBError, "corrupt context_before column", err)
		}
		if err := json.Unmarshal([]byte(after), &ann.Context.After); err != nil {
			return nil, errors.New(errors.DBError, "corrupt context_after column", err)
		}
		anns = append(anns, ann)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.DBError, "failed to read annotations", err)
	}
	return anns, nil
}

func insertAnnotation(tx *sql.Tx, flowName string, position int, ann flow.Annotation) error {
	before, err := json.Marshal(contextLines(ann.Context.Before))
	if err != nil {
		return err
	}
	after, err := json.Marshal(contextLines(ann.Context.After))
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO annotations (
			id, flow_name, repo_id, path, commit_hash, line, col, tagless_line,
			context_before, context_line, context_after,
			symbol_path, node_type, current_node, next_node,
			cross_declared, raw_comment, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ann.ID, flowName, ann.RepoID, ann.Path, ann.Commit, ann.Line, ann.Column,
		ann.TaglessLine, string(before), ann.Context.Line, string(after),
		ann.SymbolPath, ann.NodeType, ann.Edge.CurrentNode, ann.Edge.NextNode,
		boolInt(ann.CrossDeclared), ann.RawComment, position)
	return err
}

// contextLines normalizes nil to an empty slice so the JSON column round-trips
// to the same shape it was stored with.
func contextLines(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
