// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgclient

import (
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"pgbridge/pgerr"
)

func TestExtractParams_Classification(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		arg      any
		wantKind paramKind
	}{
		{name: "bool", arg: true, wantKind: kindBool},
		{name: "int widens to int64", arg: int(7), wantKind: kindInt64},
		{name: "int16 widens to int64", arg: int16(7), wantKind: kindInt64},
		{name: "int64", arg: int64(7), wantKind: kindInt64},
		{name: "uint32 widens to int64", arg: uint32(7), wantKind: kindInt64},
		{name: "float32 widens to float64", arg: float32(1.5), wantKind: kindFloat64},
		{name: "float64", arg: float64(1.5), wantKind: kindFloat64},
		{name: "string", arg: "hello", wantKind: kindText},
		{name: "bytes", arg: []byte{0x01}, wantKind: kindBytes},
		{name: "date", arg: pgtype.Date{Time: when, Valid: true}, wantKind: kindDate},
		{name: "time of day", arg: pgtype.Time{Microseconds: 1000, Valid: true}, wantKind: kindTime},
		{name: "explicit naive timestamp", arg: pgtype.Timestamp{Time: when, Valid: true}, wantKind: kindTimestamp},
		{name: "time.Time is provisionally zoned", arg: when, wantKind: kindTimestampTz},
		{name: "duration becomes interval", arg: 2 * time.Hour, wantKind: kindInterval},
		{name: "nil is an untyped null", arg: nil, wantKind: kindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := extractParams([]any{tt.arg})
			if err != nil {
				t.Fatalf("extractParams() error = %v", err)
			}
			if params[0].kind != tt.wantKind {
				t.Errorf("kind = %d, want %d", params[0].kind, tt.wantKind)
			}
		})
	}
}

func TestExtractParams_UntypedNullHasNoOID(t *testing.T) {
	params, err := extractParams([]any{nil})
	if err != nil {
		t.Fatalf("extractParams() error = %v", err)
	}
	if params[0].oid != 0 {
		t.Errorf("untyped null oid = %d, want 0", params[0].oid)
	}
}

func TestExtractParams_InvalidHolderIsTypedNull(t *testing.T) {
	params, err := extractParams([]any{pgtype.Date{}})
	if err != nil {
		t.Fatalf("extractParams() error = %v", err)
	}
	if params[0].kind != kindNull || params[0].oid != pgtype.DateOID {
		t.Errorf("got kind=%d oid=%d, want typed date null", params[0].kind, params[0].oid)
	}
}

func TestExtractParams_UnsupportedType(t *testing.T) {
	type widget struct{}
	_, err := extractParams([]any{"ok", widget{}})
	if err == nil {
		t.Fatal("expected error for unsupported argument type")
	}
	if pgerr.KindOf(err) != pgerr.UnsupportedType {
		t.Errorf("kind = %q, want %q", pgerr.KindOf(err), pgerr.UnsupportedType)
	}
}

func TestExtractParams_Uint64Overflow(t *testing.T) {
	_, err := extractParams([]any{uint64(math.MaxUint64)})
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if pgerr.KindOf(err) != pgerr.InvalidParameter {
		t.Errorf("kind = %q, want %q", pgerr.KindOf(err), pgerr.InvalidParameter)
	}
}

func TestRefineParams_Narrowing(t *testing.T) {
	tests := []struct {
		name     string
		arg      any
		expected uint32
		wantKind paramKind
	}{
		{name: "int64 to int2", arg: int64(12), expected: pgtype.Int2OID, wantKind: kindInt16},
		{name: "int64 to int4", arg: int64(12), expected: pgtype.Int4OID, wantKind: kindInt32},
		{name: "int64 stays int8", arg: int64(12), expected: pgtype.Int8OID, wantKind: kindInt64},
		{name: "float64 to float4", arg: 1.5, expected: pgtype.Float4OID, wantKind: kindFloat32},
		{name: "float64 stays float8", arg: 1.5, expected: pgtype.Float8OID, wantKind: kindFloat64},
		{name: "zoned to naive timestamp", arg: time.Now(), expected: pgtype.TimestampOID, wantKind: kindTimestamp},
		{name: "zoned stays zoned", arg: time.Now(), expected: pgtype.TimestamptzOID, wantKind: kindTimestampTz},
		{name: "text untouched by unknown type", arg: "x", expected: pgtype.TextOID, wantKind: kindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := extractParams([]any{tt.arg})
			if err != nil {
				t.Fatalf("extractParams() error = %v", err)
			}
			if err := refineParams(params, []uint32{tt.expected}); err != nil {
				t.Fatalf("refineParams() error = %v", err)
			}
			if params[0].kind != tt.wantKind {
				t.Errorf("kind = %d, want %d", params[0].kind, tt.wantKind)
			}
		})
	}
}

func TestRefineParams_NarrowingOverflow(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		expected uint32
	}{
		{name: "too wide for int2", value: math.MaxInt16 + 1, expected: pgtype.Int2OID},
		{name: "too wide for int4", value: math.MinInt32 - 1, expected: pgtype.Int4OID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := extractParams([]any{tt.value})
			if err != nil {
				t.Fatalf("extractParams() error = %v", err)
			}
			err = refineParams(params, []uint32{tt.expected})
			if err == nil {
				t.Fatal("expected narrowing overflow error")
			}
			if pgerr.KindOf(err) != pgerr.InvalidParameter {
				t.Errorf("kind = %q, want %q", pgerr.KindOf(err), pgerr.InvalidParameter)
			}
		})
	}
}

func TestRefineParams_NullTyping(t *testing.T) {
	tests := []struct {
		name     string
		expected uint32
		wantOID  uint32
	}{
		{name: "bool null", expected: pgtype.BoolOID, wantOID: pgtype.BoolOID},
		{name: "int4 null", expected: pgtype.Int4OID, wantOID: pgtype.Int4OID},
		{name: "bytea null", expected: pgtype.ByteaOID, wantOID: pgtype.ByteaOID},
		{name: "uuid null", expected: pgtype.UUIDOID, wantOID: pgtype.UUIDOID},
		{name: "unknown expected type defaults to text", expected: 600 /* point */, wantOID: pgtype.TextOID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := extractParams([]any{nil})
			if err != nil {
				t.Fatalf("extractParams() error = %v", err)
			}
			if err := refineParams(params, []uint32{tt.expected}); err != nil {
				t.Fatalf("refineParams() error = %v", err)
			}
			if params[0].oid != tt.wantOID {
				t.Errorf("null oid = %d, want %d", params[0].oid, tt.wantOID)
			}
		})
	}
}

func TestRefineParams_MoreParamsThanDeclaredTypes(t *testing.T) {
	params, err := extractParams([]any{int64(1), int64(2)})
	if err != nil {
		t.Fatalf("extractParams() error = %v", err)
	}
	if err := refineParams(params, []uint32{pgtype.Int2OID}); err != nil {
		t.Fatalf("refineParams() error = %v", err)
	}
	if params[0].kind != kindInt16 {
		t.Errorf("params[0].kind = %d, want %d", params[0].kind, kindInt16)
	}
	if params[1].kind != kindInt64 {
		t.Errorf("params[1].kind = %d, want %d (undeclared position untouched)", params[1].kind, kindInt64)
	}
}

func TestBindValues(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	params, err := extractParams([]any{int64(5), "abc", when, nil})
	if err != nil {
		t.Fatalf("extractParams() error = %v", err)
	}
	if err := refineParams(params, []uint32{pgtype.Int2OID, pgtype.TextOID, pgtype.TimestampOID, pgtype.Int8OID}); err != nil {
		t.Fatalf("refineParams() error = %v", err)
	}

	values := bindValues(params)

	if v, ok := values[0].(int16); !ok || v != 5 {
		t.Errorf("values[0] = %#v, want int16(5)", values[0])
	}
	if v, ok := values[1].(string); !ok || v != "abc" {
		t.Errorf("values[1] = %#v, want \"abc\"", values[1])
	}
	ts, ok := values[2].(pgtype.Timestamp)
	if !ok || !ts.Valid || !ts.Time.Equal(when) {
		t.Errorf("values[2] = %#v, want naive timestamp %v", values[2], when)
	}
	if v, ok := values[3].(*int64); !ok || v != nil {
		t.Errorf("values[3] = %#v, want (*int64)(nil)", values[3])
	}
}

func TestIntervalLiteral(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0 days 0 seconds 0 microseconds"},
		{
			name: "days and remainder",
			d:    25*time.Hour + 3*time.Second + 5*time.Microsecond,
			want: "1 days 3603 seconds 5 microseconds",
		},
		{name: "sub-second", d: 1500 * time.Microsecond, want: "0 days 0 seconds 1500 microseconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intervalLiteral(tt.d); got != tt.want {
				t.Errorf("intervalLiteral(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
