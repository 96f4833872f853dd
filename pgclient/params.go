// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgclient

import (
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"pgbridge/pgerr"
)

// paramKind enumerates the closed variant of supported parameter types.
type paramKind int

const (
	kindBool paramKind = iota
	kindInt16
	kindInt32
	kindInt64
	kindFloat32
	kindFloat64
	kindText
	kindBytes
	kindDate
	kindTime
	kindTimestamp
	kindTimestampTz
	kindInterval
	kindNull
)

// param is one call argument classified for wire encoding. Extraction fills
// in the widest variant that can hold the host value; refinement narrows it
// in place once the prepared statement reveals the expected type. A param is
// consumed exactly once at bind time.
type param struct {
	kind paramKind

	// oid is only meaningful for kindNull: the concrete type the null will
	// bind as. Zero means the null is still untyped and must be refined.
	oid uint32

	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
	t     time.Time
	date  pgtype.Date
	tod   pgtype.Time
}

// extractParams classifies each host argument by its runtime type.
// This phase is statement-independent: integers and floats are held at their
// widest width and time.Time is provisionally zoned, pending refinement.
func extractParams(args []any) ([]param, error) {
	params := make([]param, 0, len(args))

	for idx, arg := range args {
		if arg == nil {
			params = append(params, param{kind: kindNull})
			continue
		}

		switch v := arg.(type) {
		case bool:
			params = append(params, param{kind: kindBool, b: v})
		case int:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case int8:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case int16:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case int32:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case int64:
			params = append(params, param{kind: kindInt64, i: v})
		case uint:
			if uint64(v) > math.MaxInt64 {
				return nil, pgerr.Newf(pgerr.InvalidParameter, "argument %d (%d) overflows a 64-bit signed integer", idx, v)
			}
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case uint8:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case uint16:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case uint32:
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case uint64:
			if v > math.MaxInt64 {
				return nil, pgerr.Newf(pgerr.InvalidParameter, "argument %d (%d) overflows a 64-bit signed integer", idx, v)
			}
			params = append(params, param{kind: kindInt64, i: int64(v)})
		case float32:
			params = append(params, param{kind: kindFloat64, f: float64(v)})
		case float64:
			params = append(params, param{kind: kindFloat64, f: v})
		case string:
			params = append(params, param{kind: kindText, s: v})
		case []byte:
			params = append(params, param{kind: kindBytes, bytes: v})
		case pgtype.Date:
			if !v.Valid {
				params = append(params, param{kind: kindNull, oid: pgtype.DateOID})
				continue
			}
			params = append(params, param{kind: kindDate, date: v})
		case pgtype.Time:
			if !v.Valid {
				params = append(params, param{kind: kindNull, oid: pgtype.TimeOID})
				continue
			}
			params = append(params, param{kind: kindTime, tod: v})
		case pgtype.Timestamp:
			if !v.Valid {
				params = append(params, param{kind: kindNull, oid: pgtype.TimestampOID})
				continue
			}
			params = append(params, param{kind: kindTimestamp, t: v.Time})
		case time.Time:
			// Provisionally zoned; refinement drops the zone when the
			// statement expects a plain timestamp.
			params = append(params, param{kind: kindTimestampTz, t: v.UTC()})
		case time.Duration:
			params = append(params, param{kind: kindInterval, s: intervalLiteral(v)})
		default:
			return nil, pgerr.Newf(pgerr.UnsupportedType,
				"argument %d is of type %T, which is not supported; "+
					"supported types: bool, int, float, string, []byte, time.Time, time.Duration, pgtype.Date, pgtype.Time, pgtype.Timestamp, nil",
				idx, arg)
		}
	}

	return params, nil
}

// refineParams narrows each param against the prepared statement's declared
// parameter types. It rewrites params in place and never widens: positions
// whose declared type is unknown keep their extracted classification.
func refineParams(params []param, paramOIDs []uint32) error {
	for idx := range params {
		if idx >= len(paramOIDs) {
			continue
		}
		expected := paramOIDs[idx]
		p := &params[idx]

		switch p.kind {
		case kindInt64:
			switch expected {
			case pgtype.Int2OID:
				if p.i < math.MinInt16 || p.i > math.MaxInt16 {
					return pgerr.Newf(pgerr.InvalidParameter, "argument %d (%d) does not fit into int2", idx, p.i)
				}
				p.kind = kindInt16
			case pgtype.Int4OID:
				if p.i < math.MinInt32 || p.i > math.MaxInt32 {
					return pgerr.Newf(pgerr.InvalidParameter, "argument %d (%d) does not fit into int4", idx, p.i)
				}
				p.kind = kindInt32
			}
		case kindFloat64:
			if expected == pgtype.Float4OID {
				p.kind = kindFloat32
			}
		case kindTimestampTz:
			if expected == pgtype.TimestampOID {
				p.kind = kindTimestamp
			}
		case kindNull:
			if p.oid != 0 {
				continue
			}
			switch expected {
			case pgtype.BoolOID, pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID,
				pgtype.Float4OID, pgtype.Float8OID, pgtype.ByteaOID,
				pgtype.DateOID, pgtype.TimeOID, pgtype.TimestampOID,
				pgtype.TimestamptzOID, pgtype.UUIDOID:
				p.oid = expected
			default:
				// Unknown expected type: bind as a text null.
				p.oid = pgtype.TextOID
			}
		}
	}
	return nil
}

// bindValues converts refined params into the values handed to the driver.
// Nulls become typed empty holders or nil pointers so the wire encoding
// matches the statement's declared parameter type.
func bindValues(params []param) []any {
	values := make([]any, len(params))
	for idx := range params {
		p := &params[idx]
		switch p.kind {
		case kindBool:
			values[idx] = p.b
		case kindInt16:
			values[idx] = int16(p.i)
		case kindInt32:
			values[idx] = int32(p.i)
		case kindInt64:
			values[idx] = p.i
		case kindFloat32:
			values[idx] = float32(p.f)
		case kindFloat64:
			values[idx] = p.f
		case kindText, kindInterval:
			values[idx] = p.s
		case kindBytes:
			values[idx] = p.bytes
		case kindDate:
			values[idx] = p.date
		case kindTime:
			values[idx] = p.tod
		case kindTimestamp:
			values[idx] = pgtype.Timestamp{Time: p.t, Valid: true}
		case kindTimestampTz:
			values[idx] = p.t
		case kindNull:
			values[idx] = nullValue(p.oid)
		}
	}
	return values
}

// nullValue returns a typed null for the given parameter OID.
func nullValue(oid uint32) any {
	switch oid {
	case pgtype.BoolOID:
		return (*bool)(nil)
	case pgtype.Int2OID:
		return (*int16)(nil)
	case pgtype.Int4OID:
		return (*int32)(nil)
	case pgtype.Int8OID:
		return (*int64)(nil)
	case pgtype.Float4OID:
		return (*float32)(nil)
	case pgtype.Float8OID:
		return (*float64)(nil)
	case pgtype.ByteaOID:
		return ([]byte)(nil)
	case pgtype.DateOID:
		return pgtype.Date{}
	case pgtype.TimeOID:
		return pgtype.Time{}
	case pgtype.TimestampOID:
		return pgtype.Timestamp{}
	case pgtype.TimestamptzOID:
		return (*time.Time)(nil)
	case pgtype.UUIDOID:
		return pgtype.UUID{}
	default:
		return (*string)(nil)
	}
}

// intervalLiteral renders a duration as the textual interval form understood
// by the server, avoiding a separate binary interval encoding path.
func intervalLiteral(d time.Duration) string {
	days := d / (24 * time.Hour)
	rem := d % (24 * time.Hour)
	seconds := rem / time.Second
	micros := (rem % time.Second) / time.Microsecond
	return fmt.Sprintf("%d days %d seconds %d microseconds", days, seconds, micros)
}
