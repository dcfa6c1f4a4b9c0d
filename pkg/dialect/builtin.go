package dialect

// SQLite lists user tables in creation order.
var SQLite = NewDialect("sqlite").
	ListTables(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).
	Build()

// DuckDB lists base tables of the main schema by name.
var DuckDB = NewDialect("duckdb").
	ListTables(`SELECT table_name AS name FROM information_schema.tables WHERE table_schema = 'main' AND table_type = 'BASE TABLE' ORDER BY table_name`).
	Build()
