// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgclient

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"pgbridge/pgerr"
)

// Row maps column names to decoded host values. Insertion follows server
// column order; duplicate column names overwrite earlier ones.
type Row map[string]any

// Result is the decoded output of one query.
type Result struct {
	// Columns preserves the server's column order.
	Columns []string
	// Rows are positionally aligned with Columns.
	Rows []Row
}

// decodeRows drains rows into a Result. A single column with an unsupported
// declared type fails the whole decode; no partial rows are returned.
func decodeRows(rows pgx.Rows, tm *pgtype.Map) (*Result, error) {
	defer rows.Close()

	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
		if !supportedColumnOID(fd.DataTypeOID) {
			return nil, pgerr.Newf(pgerr.UnsupportedType,
				"unsupported PostgreSQL type %s for column %q", oidName(tm, fd.DataTypeOID), fd.Name)
		}
	}

	res := &Result{Columns: columns, Rows: []Row{}}

	for rows.Next() {
		targets := make([]any, len(fds))
		for i, fd := range fds {
			targets[i] = newScanTarget(fd.DataTypeOID)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, pgerr.Wrap(pgerr.DataError, "failed to scan row", err)
		}

		row := make(Row, len(fds))
		for i, fd := range fds {
			value, err := hostValue(fd, targets[i])
			if err != nil {
				return nil, err
			}
			row[fd.Name] = value
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerr.Wrap(pgerr.ExecutionError, "query execution failed", err)
	}

	return res, nil
}

// supportedColumnOID reports whether the declared column type is in the
// closed set this binding decodes.
func supportedColumnOID(oid uint32) bool {
	switch oid {
	case pgtype.BoolOID,
		pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID,
		pgtype.Float4OID, pgtype.Float8OID,
		pgtype.NumericOID,
		pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID,
		pgtype.ByteaOID,
		pgtype.DateOID, pgtype.TimeOID,
		pgtype.TimestampOID, pgtype.TimestamptzOID,
		pgtype.UUIDOID,
		pgtype.JSONOID, pgtype.JSONBOID:
		return true
	}
	return false
}

// newScanTarget allocates the scan destination for a column of the given
// declared type. Nullable holders are used so SQL NULL survives the scan.
func newScanTarget(oid uint32) any {
	switch oid {
	case pgtype.BoolOID:
		return &pgtype.Bool{}
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return &pgtype.Int8{}
	case pgtype.Float4OID, pgtype.Float8OID:
		return &pgtype.Float8{}
	case pgtype.NumericOID:
		return &pgtype.Numeric{}
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID:
		return &pgtype.Text{}
	case pgtype.ByteaOID, pgtype.JSONOID, pgtype.JSONBOID:
		return new([]byte)
	case pgtype.DateOID:
		return &pgtype.Date{}
	case pgtype.TimeOID:
		return &pgtype.Time{}
	case pgtype.TimestampOID:
		return &pgtype.Timestamp{}
	case pgtype.TimestamptzOID:
		return &pgtype.Timestamptz{}
	case pgtype.UUIDOID:
		return &pgtype.UUID{}
	default:
		return new(any)
	}
}

// hostValue converts a scanned holder into the host value for its column.
// SQL NULL decodes to nil at every type.
func hostValue(fd pgconn.FieldDescription, target any) (any, error) {
	switch v := target.(type) {
	case *pgtype.Bool:
		if !v.Valid {
			return nil, nil
		}
		return v.Bool, nil
	case *pgtype.Int8:
		if !v.Valid {
			return nil, nil
		}
		return v.Int64, nil
	case *pgtype.Float8:
		if !v.Valid {
			return nil, nil
		}
		return v.Float64, nil
	case *pgtype.Numeric:
		if !v.Valid {
			return nil, nil
		}
		// Decimal-preserving text, never a binary float.
		dv, err := v.Value()
		if err != nil {
			return nil, pgerr.Wrap(pgerr.DataError, "failed to convert numeric column "+fd.Name, err)
		}
		s, ok := dv.(string)
		if !ok {
			return nil, pgerr.Newf(pgerr.DataError, "failed to convert numeric column %q", fd.Name)
		}
		return s, nil
	case *pgtype.Text:
		if !v.Valid {
			return nil, nil
		}
		return v.String, nil
	case *[]byte:
		if *v == nil {
			return nil, nil
		}
		if fd.DataTypeOID == pgtype.JSONOID || fd.DataTypeOID == pgtype.JSONBOID {
			return compactJSON(fd.Name, *v)
		}
		return *v, nil
	case *pgtype.Date:
		if !v.Valid {
			return nil, nil
		}
		return *v, nil
	case *pgtype.Time:
		if !v.Valid {
			return nil, nil
		}
		return *v, nil
	case *pgtype.Timestamp:
		if !v.Valid {
			return nil, nil
		}
		return v.Time, nil
	case *pgtype.Timestamptz:
		if !v.Valid {
			return nil, nil
		}
		return v.Time.UTC(), nil
	case *pgtype.UUID:
		if !v.Valid {
			return nil, nil
		}
		return uuid.UUID(v.Bytes).String(), nil
	default:
		return nil, pgerr.Newf(pgerr.DataError, "no conversion for column %q", fd.Name)
	}
}

// compactJSON re-serializes a json/jsonb payload in compact form. The output
// is canonical, not byte-identical to the stored text.
func compactJSON(column string, raw []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pgerr.Wrap(pgerr.DataError, "failed to parse json column "+column, err)
	}
	out, err := json.Marshal(parsed)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.DataError, "failed to serialize json column "+column, err)
	}
	return string(out), nil
}

// oidName renders a type OID with its name when the connection's type map
// knows it.
func oidName(tm *pgtype.Map, oid uint32) string {
	if tm != nil {
		if t, ok := tm.TypeForOID(oid); ok {
			return fmt.Sprintf("%q (OID %d)", t.Name, oid)
		}
	}
	return fmt.Sprintf("OID %d", oid)
}
