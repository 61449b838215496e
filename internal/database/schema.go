package database

import (
	"database/sql"
	"fmt"
	"log"
)

// specTables lists the per-category spec tables in catalog probe order
// (spec.md §3, §9 "table dispatch").
var specTables = []string{
	"cpu_specs",
	"cpu_cooler_specs",
	"motherboard_specs",
	"gpu_specs",
	"memory_specs",
	"storage_specs",
	"psu_specs",
	"case_specs",
}

// EnsureSchema checks if tables exist and creates them if they don't.
func EnsureSchema(db *sql.DB) error {
	log.Println("Checking database schema...")

	if !tableExists(db, "categories") {
		log.Println("Creating categories table...")
		if err := createCategoriesTable(db); err != nil {
			return fmt.Errorf("failed to create categories table: %w", err)
		}
	}

	if !tableExists(db, "components") {
		log.Println("Creating components table...")
		if err := createComponentsTable(db); err != nil {
			return fmt.Errorf("failed to create components table: %w", err)
		}
	}

	for _, table := range specTables {
		if !tableExists(db, table) {
			log.Printf("Creating %s table...", table)
			if err := createSpecTable(db, table); err != nil {
				return fmt.Errorf("failed to create %s table: %w", table, err)
			}
		}
	}

	if !tableExists(db, "user_builds_temp") {
		log.Println("Creating user_builds_temp table...")
		if err := createUserBuildsTempTable(db); err != nil {
			return fmt.Errorf("failed to create user_builds_temp table: %w", err)
		}
	}

	if !tableExists(db, "user_builds") {
		log.Println("Creating user_builds table...")
		if err := createUserBuildsTable(db); err != nil {
			return fmt.Errorf("failed to create user_builds table: %w", err)
		}
	}

	if !tableExists(db, "cart_items") {
		log.Println("Creating cart_items table...")
		if err := createCartItemsTable(db); err != nil {
			return fmt.Errorf("failed to create cart_items table: %w", err)
		}
	}

	if !tableExists(db, "orders") {
		log.Println("Creating orders table...")
		if err := createOrdersTable(db); err != nil {
			return fmt.Errorf("failed to create orders table: %w", err)
		}
	}

	if !tableExists(db, "order_items") {
		log.Println("Creating order_items table...")
		if err := createOrderItemsTable(db); err != nil {
			return fmt.Errorf("failed to create order_items table: %w", err)
		}
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database schema is ready!")
	return nil
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, tableName string) bool {
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`

	var exists bool
	err := db.QueryRow(query, tableName).Scan(&exists)
	if err != nil {
		log.Printf("Error checking if table %s exists: %v", tableName, err)
		return false
	}
	return exists
}

func createCategoriesTable(db *sql.DB) error {
	query := `
		CREATE TABLE categories (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			slug VARCHAR(50) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

func createComponentsTable(db *sql.DB) error {
	query := `
		CREATE TABLE components (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			category_id UUID NOT NULL REFERENCES categories(id),
			name VARCHAR(200) NOT NULL,
			brand VARCHAR(100),
			price NUMERIC(10,2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			low_stock_threshold INTEGER NOT NULL DEFAULT 5,
			vendor VARCHAR(100),
			image_bucket_path TEXT,

			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

// createSpecTable creates one of the eight per-category spec tables. Each
// shares the id/component_id/created_at envelope and carries a JSONB attrs
// column for the category-specific fields (spec.md §9 "table dispatch").
func createSpecTable(db *sql.DB, table string) error {
	query := fmt.Sprintf(`
		CREATE TABLE %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			component_id UUID NOT NULL UNIQUE REFERENCES components(id) ON DELETE CASCADE,
			attrs JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT NOW()
		)`, table)

	_, err := db.Exec(query)
	return err
}

func createUserBuildsTempTable(db *sql.DB) error {
	query := `
		CREATE TABLE user_builds_temp (
			user_id UUID PRIMARY KEY,
			components JSONB NOT NULL DEFAULT '{}',
			source_build_id UUID,
			updated_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

func createUserBuildsTable(db *sql.DB) error {
	query := `
		CREATE TABLE user_builds (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			name VARCHAR(200) NOT NULL,
			components JSONB NOT NULL DEFAULT '{}',
			total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			power_usage INTEGER NOT NULL DEFAULT 0,
			compatibility VARCHAR(20) NOT NULL DEFAULT 'unknown',
			image_component_id UUID,
			is_saved BOOLEAN NOT NULL DEFAULT TRUE,

			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

func createCartItemsTable(db *sql.DB) error {
	query := `
		CREATE TABLE cart_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			category VARCHAR(50) NOT NULL,

			component_id UUID REFERENCES components(id),
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 1,

			build_id UUID REFERENCES user_builds(id),
			build_name VARCHAR(200),
			build_total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			bundle_item_count INTEGER NOT NULL DEFAULT 0,

			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

func createOrdersTable(db *sql.DB) error {
	query := `
		CREATE TABLE orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			total NUMERIC(10,2) NOT NULL,
			payment_method VARCHAR(30) NOT NULL DEFAULT 'cod',
			notes TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',

			paid_at TIMESTAMP,
			shipped_at TIMESTAMP,
			completed_at TIMESTAMP,
			cancelled_at TIMESTAMP,
			refunded_at TIMESTAMP,

			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

func createOrderItemsTable(db *sql.DB) error {
	query := `
		CREATE TABLE order_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			component_id UUID,
			build_id UUID,
			quantity INTEGER NOT NULL DEFAULT 1,
			price_each NUMERIC(10,2) NOT NULL,
			category VARCHAR(50) NOT NULL,

			component_name VARCHAR(200) NOT NULL,
			component_image TEXT,
			component_category VARCHAR(50) NOT NULL,

			created_at TIMESTAMP DEFAULT NOW()
		)`

	_, err := db.Exec(query)
	return err
}

// createIndexes creates necessary indexes for performance.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_components_category_id ON components(category_id)",
		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_components_category_price ON components(category_id, price)",
		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_components_status ON components(status) WHERE status = 'active'",

		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_user_builds_user_id ON user_builds(user_id)",

		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_cart_items_user_id ON cart_items(user_id)",
		// Component lines are unique per (user, component); bundle lines have
		// component_id NULL and are exempt (spec.md §6 "unique on
		// (user_id, component_id) for component lines").
		"CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS idx_cart_items_user_component_unique ON cart_items(user_id, component_id) WHERE component_id IS NOT NULL",

		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_orders_user_id ON orders(user_id)",
		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_orders_status ON orders(status)",

		"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)",
	}

	for _, table := range specTables {
		indexes = append(indexes, fmt.Sprintf(
			"CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_%s_component_id ON %s(component_id)", table, table))
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			log.Printf("Warning: failed to create index: %v", err)
		}
	}

	return nil
}

// DropSchema drops all tables (for testing purposes).
func DropSchema(db *sql.DB) error {
	queries := []string{
		"DROP TABLE IF EXISTS order_items CASCADE",
		"DROP TABLE IF EXISTS orders CASCADE",
		"DROP TABLE IF EXISTS cart_items CASCADE",
		"DROP TABLE IF EXISTS user_builds CASCADE",
		"DROP TABLE IF EXISTS user_builds_temp CASCADE",
	}
	for _, table := range specTables {
		queries = append(queries, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table))
	}
	queries = append(queries,
		"DROP TABLE IF EXISTS components CASCADE",
		"DROP TABLE IF EXISTS categories CASCADE",
	)

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	return nil
}
