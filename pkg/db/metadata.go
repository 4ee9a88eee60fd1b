package db

// ColumnMetadata describes one projected column. It is built once per
// execution and immutable afterwards. Not every driver populates every
// attribute; Name and Label are always set for text-protocol results.
type ColumnMetadata struct {
	Name     string
	Label    string
	Schema   string
	Table    string
	Type     uint8
	Length   uint32
	Decimals uint8
	Nullable bool
	Unsigned bool
}

// ResultSetMetaData is a static descriptor of a result set's columns.
type ResultSetMetaData struct {
	columns []ColumnMetadata
}

func NewResultSetMetaData(columns []ColumnMetadata) *ResultSetMetaData {
	return &ResultSetMetaData{columns: columns}
}

func (m *ResultSetMetaData) ColumnCount() int {
	return len(m.columns)
}

// Column returns the descriptor for the 1-based column index.
func (m *ResultSetMetaData) Column(index int) (ColumnMetadata, error) {
	if index < 1 || index > len(m.columns) {
		return ColumnMetadata{}, ErrColumnIndexOutOfRange
	}
	return m.columns[index-1], nil
}

func (m *ResultSetMetaData) ColumnName(index int) (string, error) {
	col, err := m.Column(index)
	if err != nil {
		return "", err
	}
	return col.Name, nil
}

func (m *ResultSetMetaData) ColumnLabel(index int) (string, error) {
	col, err := m.Column(index)
	if err != nil {
		return "", err
	}
	return col.Label, nil
}

// ParameterMetaData is a static descriptor of a prepared statement's
// parameters.
type ParameterMetaData struct {
	count int
}

func NewParameterMetaData(count int) *ParameterMetaData {
	return &ParameterMetaData{count: count}
}

func (m *ParameterMetaData) ParameterCount() int {
	return m.count
}
