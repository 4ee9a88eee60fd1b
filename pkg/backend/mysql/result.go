package mysql

import (
	"fmt"

	"github.com/dbridge-project/dbridge/pkg/db"
	"github.com/siddontang/go-mysql/mysql"
)

// convertResult materializes a go-mysql result into the vendor-neutral form.
// Commands without a result set keep Columns nil.
func convertResult(result *mysql.Result) *db.RawResult {
	raw := &db.RawResult{
		AffectedRows: int64(result.AffectedRows),
		GeneratedKey: result.InsertId,
	}

	if result.Resultset != nil {
		raw.Columns = convertFields(result.Fields)
		raw.Rows = convertRows(result.Values)
	}
	return raw
}

func convertFields(fields []*mysql.Field) []db.ColumnMetadata {
	columns := make([]db.ColumnMetadata, 0, len(fields))
	for _, field := range fields {
		name := string(field.OrgName)
		if name == "" {
			name = string(field.Name)
		}
		columns = append(columns, db.ColumnMetadata{
			Name:     name,
			Label:    string(field.Name),
			Schema:   string(field.Schema),
			Table:    string(field.Table),
			Type:     field.Type,
			Length:   field.ColumnLength,
			Decimals: field.Decimal,
			Nullable: field.Flag&mysql.NOT_NULL_FLAG == 0,
			Unsigned: field.Flag&mysql.UNSIGNED_FLAG != 0,
		})
	}
	return columns
}

func convertRows(values [][]mysql.FieldValue) [][]db.Value {
	rows := make([][]db.Value, 0, len(values))
	for _, rowValue := range values {
		row := make([]db.Value, len(rowValue))
		for i, colValue := range rowValue {
			row[i] = convertCell(colValue)
		}
		rows = append(rows, row)
	}
	return rows
}

func convertCell(value mysql.FieldValue) db.Value {
	switch value.Type {
	case mysql.FieldValueTypeNull:
		return db.NullValue()
	case mysql.FieldValueTypeUnsigned:
		return db.Uint64Value(value.AsUint64())
	case mysql.FieldValueTypeSigned:
		return db.Int64Value(value.AsInt64())
	case mysql.FieldValueTypeFloat:
		return db.Float64Value(value.AsFloat64())
	case mysql.FieldValueTypeString:
		return db.BytesValue(value.AsString())
	default:
		panic(fmt.Errorf("invalid col value type: %v", value.Type))
	}
}
